package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle the task store runs its queries
// against. Both *sql.DB and *sql.Tx satisfy it, so the same store code
// serves pooled connections and transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
