package duckdb

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction stores an open transaction in the context. Stores that
// write inside one, like the action store's create and transition paths,
// pick it up instead of the shared connection.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the ambient transaction, or nil when the caller
// did not open one.
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
