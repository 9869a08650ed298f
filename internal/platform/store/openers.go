package store

import (
	"context"
	"time"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	chx "enscheck/internal/platform/store/ch"
	"enscheck/internal/platform/store/pg"
)

// sleep is a seam for the boot backoff
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// openPG opens the pool and waits until it answers a ping, doubling the
// wait between attempts up to maxBackoff
func openPG(ctx context.Context, cfg Config, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "pg open")
	}

	db := newPGAdapter(p)
	if err := pingWithBackoff(ctx, db, cfg.PG.ConnectRetries, cfg.PG.PingTimeout, log); err != nil {
		p.Close()
		return nil, err
	}
	return db, nil
}

const (
	firstBackoff = 150 * time.Millisecond
	maxBackoff   = 5 * time.Second
)

func pingWithBackoff(ctx context.Context, p Pinger, attempts int, timeout time.Duration, log logger.Logger) error {
	if attempts <= 0 {
		attempts = 1
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	wait := firstBackoff
	var last error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = p.Ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn().Err(last).Int("attempt", i).Dur("retry_in", wait).Msg("pg not ready")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		wait = min(wait*2, maxBackoff)
	}
	return perr.Wrapf(last, perr.ErrorCodeUnavailable, "pg ping failed after %d attempts", attempts)
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ch open")
	}
	return c, nil
}

var (
	_ Clickhouse = (*chx.CH)(nil)
	_ Pinger     = (*chx.CH)(nil)
)
