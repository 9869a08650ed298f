package store

import (
	"context"
	"time"

	"enscheck/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what *pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxBeginner interface {
	pgxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier traces every statement it runs on q
type querier struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slow   time.Duration // <0 disables the slow flag
}

func (x querier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := x.q.Exec(ctx, sql, args...)
	x.trace(ctx, sql, args, start, err)
	return ct, err
}

func (x querier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := x.q.Query(ctx, sql, args...)
	x.trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// QueryRow traces once Scan returns, so the scan error is reported
func (x querier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return tracedRow{
		row: x.q.QueryRow(ctx, sql, args...),
		done: func(err error) {
			x.trace(ctx, sql, args, start, err)
		},
	}
}

func (x querier) trace(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if x.tracer == nil {
		return
	}
	took := time.Since(start)
	x.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: took,
		Err:     err,
		Slow:    x.slow >= 0 && took >= x.slow,
	})
}

type tracedRow struct {
	row  pgx.Row
	done func(error)
}

func (r tracedRow) Scan(dst ...any) error {
	err := r.row.Scan(dst...)
	r.done(err)
	return err
}

// pgAdapter is the TxRunner over a pool
type pgAdapter struct {
	querier
	db    pgxBeginner
	close func()
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{
		querier: querier{q: p.Pool, tracer: p.Tracer, slow: slowThreshold(p.SlowMs)},
		db:      p.Pool,
		close:   p.Close,
	}
}

func slowThreshold(ms int) time.Duration {
	if ms < 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

// Tx commits when fn succeeds and rolls back otherwise
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	in := querier{q: tx, tracer: a.tracer, slow: a.slow}
	if err := fn(in); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Ping runs a trivial query through the tracer
func (a *pgAdapter) Ping(ctx context.Context) error {
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error {
	if a.close != nil {
		a.close()
	}
	return nil
}
