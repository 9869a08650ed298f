// Package repo provides postgres and clickhouse persistence for finished runs
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"enscheck/internal/modkit/repokit"
	"enscheck/internal/services/resolve/domain"
)

// SchemaPG creates the run tables. Every statement is idempotent
var SchemaPG = []string{
	`CREATE TABLE IF NOT EXISTS resolve_runs (
		run_id       uuid PRIMARY KEY,
		source       text NOT NULL DEFAULT '',
		registry     text NOT NULL DEFAULT '',
		scheme       text NOT NULL,
		started_at   timestamptz NOT NULL,
		finished_at  timestamptz NOT NULL,
		interrupted  boolean NOT NULL DEFAULT false,
		stats        jsonb NOT NULL DEFAULT '{}'::jsonb
	)`,
	`ALTER TABLE resolve_runs ADD COLUMN IF NOT EXISTS aborted text NOT NULL DEFAULT ''`,
	`CREATE TABLE IF NOT EXISTS resolve_names (
		run_id      uuid NOT NULL REFERENCES resolve_runs(run_id) ON DELETE CASCADE,
		name        text NOT NULL,
		status      text NOT NULL CHECK (status IN ('unregistered', 'expired')),
		expires_at  timestamptz,
		PRIMARY KEY (run_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS resolve_names_status_idx ON resolve_names (status, expires_at)`,
	`CREATE TABLE IF NOT EXISTS resolve_failures (
		run_id  uuid NOT NULL REFERENCES resolve_runs(run_id) ON DELETE CASCADE,
		kind    text NOT NULL CHECK (kind IN ('batch', 'record')),
		batch   integer NOT NULL,
		names   text[] NOT NULL DEFAULT '{}',
		name    text NOT NULL DEFAULT '',
		expiry  text NOT NULL DEFAULT '',
		code    text NOT NULL DEFAULT '',
		error   text NOT NULL DEFAULT '',
		at      timestamptz NOT NULL
	)`,
}

// EnsureSchemaPG applies SchemaPG in one transaction
func EnsureSchemaPG(ctx context.Context, db repokit.TxRunner) error {
	return repokit.WithTx(ctx, db, func(q repokit.Queryer) error {
		for _, stmt := range SchemaPG {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("resolve schema: %w", err)
			}
		}
		return nil
	})
}

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// InsertRun records the run header (idempotent on run_id)
func (r *queries) InsertRun(ctx context.Context, run domain.RunInfo, st domain.Stats) error {
	stats, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO resolve_runs (run_id, source, registry, scheme, started_at, finished_at, interrupted, stats, aborted)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			interrupted = EXCLUDED.interrupted,
			stats = EXCLUDED.stats,
			aborted = EXCLUDED.aborted
	`, run.ID, run.Source, run.Registry, string(run.Scheme), run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Interrupted, string(stats), run.Aborted)
	return err
}

// InsertUnregistered stores unregistered names in one statement
func (r *queries) InsertUnregistered(ctx context.Context, runID string, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO resolve_names (run_id, name, status)
		SELECT $1::uuid, n, 'unregistered' FROM unnest($2::text[]) AS n
		ON CONFLICT (run_id, name) DO NOTHING
	`, runID, names)
	if err != nil {
		return 0, fmt.Errorf("insert unregistered: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertExpired stores expired names with their expiry in one statement
func (r *queries) InsertExpired(ctx context.Context, runID string, entries []domain.ExpiredEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	names := make([]string, len(entries))
	exps := make([]time.Time, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		exps[i] = e.ExpiresAt.UTC()
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO resolve_names (run_id, name, status, expires_at)
		SELECT $1::uuid, n, 'expired', e FROM unnest($2::text[], $3::timestamptz[]) AS t(n, e)
		ON CONFLICT (run_id, name) DO NOTHING
	`, runID, names, exps)
	if err != nil {
		return 0, fmt.Errorf("insert expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertFailures stores diagnostics rows
func (r *queries) InsertFailures(ctx context.Context, runID string, fs []domain.StoredFailure) (int64, error) {
	var n int64
	for _, f := range fs {
		names := f.Names
		if names == nil {
			names = []string{}
		}
		tag, err := r.q.Exec(ctx, `
			INSERT INTO resolve_failures (run_id, kind, batch, names, name, expiry, code, error, at)
			VALUES ($1::uuid, $2, $3, $4::text[], $5, $6, $7, $8, $9)
		`, runID, f.Kind, f.Batch, names, f.Name, f.Expiry, f.Code, f.Error, f.At.UTC())
		if err != nil {
			return n, fmt.Errorf("insert failure batch %d: %w", f.Batch, err)
		}
		n += tag.RowsAffected()
	}
	return n, nil
}
