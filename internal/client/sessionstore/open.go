package sessionstore

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/client/client"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// Open opens the SQLite session file at dsn. If it cannot be opened the
// returned store works in memory only. The *sql.DB is nil in that case.
func Open(ctx context.Context, dsn string, l logging.Logger) (*Fallback, *sql.DB) {
	db, err := client.InitDatabase(ctx, dsn)
	if err != nil {
		l.Warn(ctx, "session storage unavailable, keeping session in memory", "dsn", dsn, "error", err.Error())
		return NewMemoryOnly(l), nil
	}

	return NewFallback(NewDurable(metadata.NewSQLiteRepository(db)), l), db
}
