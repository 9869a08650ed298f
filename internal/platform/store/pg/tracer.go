package pg

import (
	"context"
	"strings"
	"time"

	"enscheck/internal/platform/logger"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives every statement the store adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements on l; slow ones at warn, failures at error
func Tracer(l logger.Logger) QueryTracer {
	return &logTracer{log: l.With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t *logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Debug()
	switch {
	case ev.Err != nil:
		evt = t.log.Error().Err(ev.Err)
	case ev.Slow:
		evt = t.log.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Int("args", len(ev.Args)).
		Str("sql", squash(ev.SQL)).
		Msg("pg query")
}

// squash folds whitespace runs into single spaces
func squash(s string) string { return strings.Join(strings.Fields(s), " ") }
