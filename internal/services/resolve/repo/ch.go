package repo

import (
	"context"
	"fmt"
	"time"

	"enscheck/internal/platform/store"
	ptime "enscheck/internal/platform/time"
	"enscheck/internal/services/resolve/domain"
)

// TableCH is the clickhouse table fed by CHWriter
const TableCH = "ens_name_status"

// SchemaCH creates the status table
const SchemaCH = `CREATE TABLE IF NOT EXISTS ` + TableCH + ` (
	run_id      String,
	observed_at DateTime64(3, 'UTC'),
	name        String,
	status      LowCardinality(String),
	expires_at  Nullable(DateTime('UTC'))
) ENGINE = MergeTree
ORDER BY (name, observed_at)`

// CHWriter appends classification rows to clickhouse for history queries
type CHWriter struct {
	CH store.Clickhouse
}

// EnsureSchema creates the table when missing
func (w CHWriter) EnsureSchema(ctx context.Context) error {
	if err := w.CH.Exec(ctx, SchemaCH); err != nil {
		return fmt.Errorf("resolve ch schema: %w", err)
	}
	return nil
}

// Write inserts one row per classified name in a single batch
func (w CHWriter) Write(ctx context.Context, run domain.RunInfo, res domain.Result) (int, error) {
	rows := Rows(run, res)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := w.CH.Insert(ctx, TableCH, rows); err != nil {
		return 0, fmt.Errorf("insert %s: %w", TableCH, err)
	}
	return len(rows), nil
}

// Rows flattens a result into column order of TableCH
func Rows(run domain.RunInfo, res domain.Result) [][]any {
	at := run.FinishedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rows := make([][]any, 0, len(res.Unregistered)+len(res.Expired))
	for _, n := range res.Unregistered {
		rows = append(rows, []any{run.ID, at, n, domain.StatusUnregistered, (*time.Time)(nil)})
	}
	for _, e := range res.Expired {
		rows = append(rows, []any{run.ID, at, e.Name, domain.StatusExpired, ptime.Ptr(e.ExpiresAt.UTC())})
	}
	return rows
}
