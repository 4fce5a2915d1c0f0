// Package repomanager hands out repositories bound to a database handle or
// transaction and owns the schema for its backend.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/migrations"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/accounts"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager is the PostgreSQL backend.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// migrate is a test seam for dbx.Migrate.
var migrate = dbx.Migrate

// RunMigrations brings the accounts schema up to date.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) (int, error) {
	return migrate(ctx, db, goose.DialectPostgres, migrations.Migrations)
}

// OpenPostgres opens a pgx-backed *sql.DB and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	return dbx.Open(ctx, "pgx", dsn)
}
