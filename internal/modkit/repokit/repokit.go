// Package repokit binds repositories to a store transaction
package repokit

import (
	"context"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/platform/store"
)

type (
	// Queryer is what a bound repository runs statements on
	Queryer = store.RowQuerier

	// TxRunner opens transactions
	TxRunner = store.TxRunner
)

// Binder builds a repository over a Queryer, usually a transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc is a Binder backed by a function
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds b to q and panics on a nil q
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn in one transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// WithTxRetry is WithTx that starts over, up to attempts times in total, while
// the failure is retryable contention and ctx is live
func WithTxRetry(ctx context.Context, tx TxRunner, attempts int, fn func(Queryer) error) error {
	var err error
	for i := 1; ; i++ {
		err = tx.Tx(ctx, fn)
		if err == nil || i >= attempts || ctx.Err() != nil || !perr.IsRetryable(err) {
			return err
		}
		logger.C(ctx).Warn().Err(err).Int("attempt", i).Msg("repokit: retrying transaction")
	}
}
