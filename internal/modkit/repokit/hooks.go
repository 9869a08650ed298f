package repokit

import (
	"context"
	"fmt"
	"time"
)

// BeginHook runs first inside every transaction
type BeginHook func(ctx context.Context, q Queryer) error

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

// WithBeginHooks returns inner with hooks run at the start of each Tx.
// Statements outside Tx are passed through
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

func (h hookedTx) Tx(ctx context.Context, fn func(Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// StatementTimeout bounds every statement of the transaction on the server side
func StatementTimeout(d time.Duration) BeginHook {
	stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds())
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, stmt)
		return err
	}
}
