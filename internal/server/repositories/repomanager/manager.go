package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/accounts"
)

// RepositoryManager is what services depend on instead of a concrete
// backend. RunMigrations reports how many migrations it applied.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) (int, error)
	Accounts(db dbx.DBTX) accounts.Repository
}
