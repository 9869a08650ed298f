//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"enscheck/internal/platform/store"
	"enscheck/internal/services/resolve/domain"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func TestSink_Postgres_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2}})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := EnsureSchemaPG(ctx, st.PG); err != nil {
		t.Fatalf("EnsureSchemaPG: %v", err)
	}
	// idempotent
	if err := EnsureSchemaPG(ctx, st.PG); err != nil {
		t.Fatalf("EnsureSchemaPG again: %v", err)
	}

	s := NewSink(st.PG, nil)
	s.RecordRejected(ctx, domain.RecordFailure{Seq: 1, Name: "bad", Record: domain.Record{ExpiresAt: "x"}, At: at})
	run, res := sample()
	if err := s.WriteResult(ctx, run, res); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	var names, expired, failures int
	if err := st.PG.QueryRow(ctx, `SELECT count(*) FROM resolve_names WHERE run_id = $1::uuid`, run.ID).Scan(&names); err != nil {
		t.Fatalf("count names: %v", err)
	}
	if err := st.PG.QueryRow(ctx, `SELECT count(*) FROM resolve_names WHERE run_id = $1::uuid AND status = 'expired' AND expires_at IS NOT NULL`, run.ID).Scan(&expired); err != nil {
		t.Fatalf("count expired: %v", err)
	}
	if err := st.PG.QueryRow(ctx, `SELECT count(*) FROM resolve_failures WHERE run_id = $1::uuid`, run.ID).Scan(&failures); err != nil {
		t.Fatalf("count failures: %v", err)
	}
	if names != 3 || expired != 1 || failures != 1 {
		t.Fatalf("names=%d expired=%d failures=%d", names, expired, failures)
	}

	var processed int
	if err := st.PG.QueryRow(ctx, `SELECT (stats->>'processed')::int FROM resolve_runs WHERE run_id = $1::uuid`, run.ID).Scan(&processed); err != nil {
		t.Fatalf("read stats: %v", err)
	}
	if processed != 3 {
		t.Fatalf("processed = %d", processed)
	}

	// rewriting the same run is idempotent
	if err := s.WriteResult(ctx, run, res); err != nil {
		t.Fatalf("second WriteResult: %v", err)
	}
}
