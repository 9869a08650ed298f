package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"enscheck/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestOpen_BadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpen_AppliesPoolConfig(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return nil, errors.New("no dial in tests")
	})

	_, err := Open(context.Background(), Config{
		URL: "postgres://u:p@localhost:5432/ens", AppName: "enscheck-cli", MaxConns: 7,
	}, nil)
	if err == nil {
		t.Fatal("expected pool error")
	}
	if seen == nil {
		t.Fatal("pool constructor not called")
	}
	if seen.MaxConns != 7 {
		t.Fatalf("MaxConns = %d", seen.MaxConns)
	}
	if got := seen.ConnConfig.RuntimeParams["application_name"]; got != "enscheck-cli" {
		t.Fatalf("application_name = %q", got)
	}
}

func TestTracer_Levels(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.DebugLevel))

	tr.OnQuery(context.Background(), QueryEvent{SQL: "INSERT INTO resolve_runs\n\t(run_id)  VALUES ($1)", Args: []any{"r1"}})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", Slow: true, Elapsed: time.Second})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 2", Err: errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d: %s", len(lines), buf.String())
	}
	testkit.MustContain(t, lines[0], `"level":"debug"`)
	testkit.MustContain(t, lines[0], `"sql":"INSERT INTO resolve_runs (run_id) VALUES ($1)"`)
	testkit.MustContain(t, lines[1], `"level":"warn"`)
	testkit.MustContain(t, lines[2], `"level":"error"`)
	testkit.MustContain(t, lines[2], `"error":"boom"`)
}
