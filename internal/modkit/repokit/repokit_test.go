package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"enscheck/internal/platform/store"
	"enscheck/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx records statements and replays queued Tx errors
type fakeTx struct {
	store.TxRunner
	stmts []string
	errs  []error
	txs   int
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	return pgconn.NewCommandTag("SET"), nil
}

func (f *fakeTx) Tx(ctx context.Context, fn func(store.RowQuerier) error) error {
	f.txs++
	if err := fn(f); err != nil {
		return err
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

type names struct{ q Queryer }

func TestMustBind(t *testing.T) {
	b := BindFunc[names](func(q Queryer) names { return names{q: q} })
	db := &fakeTx{}
	if got := MustBind[names](b, db); got.q != db {
		t.Fatal("binder did not receive the queryer")
	}
	testkit.MustPanic(t, func() { _ = MustBind[names](b, nil) })
}

func TestWithBeginHooks_StatementTimeout(t *testing.T) {
	db := &fakeTx{}
	if WithBeginHooks(db) != TxRunner(db) {
		t.Fatal("no hooks should return the inner runner")
	}
	tx := WithBeginHooks(db, StatementTimeout(1500*time.Millisecond))

	err := WithTx(context.Background(), tx, func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT INTO resolve_runs VALUES ($1)")
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if len(db.stmts) != 2 || db.stmts[0] != "SET LOCAL statement_timeout = 1500" || !strings.HasPrefix(db.stmts[1], "INSERT") {
		t.Fatalf("stmts = %q", db.stmts)
	}
}

func TestWithBeginHooks_HookErrorSkipsBody(t *testing.T) {
	boom := errors.New("read only")
	ran := false
	tx := WithBeginHooks(&fakeTx{}, func(context.Context, Queryer) error { return boom })
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err = %v ran = %v", err, ran)
	}
}

func TestWithTxRetry(t *testing.T) {
	deadlock := &pgconn.PgError{Code: "40P01"}
	noop := func(Queryer) error { return nil }

	db := &fakeTx{errs: []error{deadlock}}
	if err := WithTxRetry(context.Background(), db, 2, noop); err != nil || db.txs != 2 {
		t.Fatalf("err = %v txs = %d", err, db.txs)
	}

	db = &fakeTx{errs: []error{deadlock, deadlock, deadlock}}
	if err := WithTxRetry(context.Background(), db, 2, noop); !errors.Is(err, deadlock) || db.txs != 2 {
		t.Fatalf("err = %v txs = %d", err, db.txs)
	}

	unique := &pgconn.PgError{Code: "23505"}
	db = &fakeTx{errs: []error{unique}}
	if err := WithTxRetry(context.Background(), db, 3, noop); !errors.Is(err, unique) || db.txs != 1 {
		t.Fatalf("non retryable: err = %v txs = %d", err, db.txs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db = &fakeTx{errs: []error{deadlock}}
	if err := WithTxRetry(ctx, db, 3, noop); err == nil || db.txs != 1 {
		t.Fatalf("cancelled: err = %v txs = %d", err, db.txs)
	}
}

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	var deadline bool
	MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}))
	if !deadline {
		t.Fatal("guard ran without a deadline")
	}
	testkit.MustPanicWith(t, "pg down", func() {
		MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("pg down") }))
	})
}
