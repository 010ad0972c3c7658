package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// WithTx begins a transaction on the request-scoped connection and returns a
// context carrying it. Repositories pick the transaction up through
// TxFromContext, so every write made with the returned context commits or
// rolls back together.
func WithTx(ctx context.Context) (context.Context, pgx.Tx, error) {
	conn := ConnFromContext(ctx)
	if conn == nil {
		return ctx, nil, errors.New("no database connection in context")
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		return ctx, nil, err
	}
	return context.WithValue(ctx, DBTxKey, tx), tx, nil
}

// TxFromContext returns the transaction stored by WithTx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}
