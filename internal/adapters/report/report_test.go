package report

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"enscheck/internal/core/namehash"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/testkit"
	"enscheck/internal/services/resolve/domain"
)

var at = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() domain.Result {
	return domain.Result{
		Unregistered: []string{"free", "gone"},
		Expired: []domain.ExpiredEntry{
			{Name: "old", ExpiresAt: time.Unix(1600000000, 0).UTC()},
			{Name: "older", ExpiresAt: time.Unix(1650000000, 0).UTC()},
		},
		Stats: domain.Stats{Read: 5, Processed: 5, Unregistered: 2, Expired: 2},
	}
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func TestTextWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(Options{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	w.BatchFailed(ctx, domain.BatchFailure{
		Seq: 2, Names: []string{"a", "b"},
		IDs: []namehash.ID{namehash.LabelHash("a"), namehash.LabelHash("b")},
		Err: perr.Unavailablef("ens unexpected status 502"), At: at,
	})
	w.RecordRejected(ctx, domain.RecordFailure{
		Seq: 3, Name: "bad", Record: domain.Record{ExpiresAt: "soon"},
		Err: perr.Newf(perr.ErrorCodeValidation, "expiry: malformed timestamp"), At: at,
	})

	if err := w.WriteResult(ctx, domain.RunInfo{ID: "r1"}, sampleResult()); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if got := read(t, dir, UnregisteredFile); got != "free\ngone\n" {
		t.Fatalf("unregistered = %q", got)
	}
	if got := read(t, dir, ExpiredFile); got != "old\t2020-09-13T12:26:40Z\nolder\t2022-04-15T05:20:00Z\n" {
		t.Fatalf("expired = %q", got)
	}
	errs := read(t, dir, ErrorsTextFile)
	testkit.MustContain(t, errs, "batch 2 failed (2 names): ens unexpected status 502")
	testkit.MustContain(t, errs, "\ta\t"+namehash.LabelHash("a").String())
	testkit.MustContain(t, errs, `record bad rejected (expiry "soon")`)

	// no temp files left behind
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}

	// failures after Close are ignored
	w.BatchFailed(ctx, domain.BatchFailure{Seq: 9, Err: errors.New("late")})
}

func TestTextWriter_RunSummaryMarksPartial(t *testing.T) {
	tests := []struct {
		name    string
		run     domain.RunInfo
		want    []string
		missing string
	}{
		{
			name:    "complete",
			run:     domain.RunInfo{ID: "r1", Scheme: domain.SchemeLabelHash, StartedAt: at},
			want:    []string{"run_id\tr1\n", "scheme\tlabelhash\n", "started_at\t2024-06-01T12:00:00Z\n", "partial\tfalse\n", "interrupted\tfalse\n"},
			missing: "aborted",
		},
		{
			name: "interrupted",
			run:  domain.RunInfo{ID: "r2", Interrupted: true},
			want: []string{"partial\ttrue\n", "interrupted\ttrue\n", "read\t5\n", "unregistered\t2\n"},
		},
		{
			name: "aborted",
			run:  domain.RunInfo{ID: "r3", Aborted: "read names: disk error"},
			want: []string{"partial\ttrue\n", "interrupted\tfalse\n", "aborted\tread names: disk error\n"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			w, err := New(Options{Dir: dir})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := w.WriteResult(context.Background(), tc.run, sampleResult()); err != nil {
				t.Fatalf("WriteResult: %v", err)
			}
			_ = w.Close()
			got := read(t, dir, RunTextFile)
			for _, s := range tc.want {
				testkit.MustContain(t, got, s)
			}
			if tc.missing != "" {
				testkit.MustNotContain(t, got, tc.missing)
			}
		})
	}
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Dir: dir, Format: FormatJSON})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	w.RecordRejected(ctx, domain.RecordFailure{
		Seq: 1, Name: "bad", Record: domain.Record{ExpiresAt: "x"},
		Err: perr.Newf(perr.ErrorCodeValidation, "bad expiry"), At: at,
	})
	run := domain.RunInfo{ID: "r1", Source: "names.txt", Scheme: domain.SchemeLabelHash, StartedAt: at, FinishedAt: at.Add(time.Minute)}
	if err := w.WriteResult(ctx, run, sampleResult()); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var doc resultDoc
	if err := json.Unmarshal([]byte(read(t, dir, ResultJSONFile)), &doc); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if doc.Run.ID != "r1" || doc.Run.Source != "names.txt" || doc.Run.Partial || len(doc.Result.Expired) != 2 || doc.Result.Stats.Read != 5 {
		t.Fatalf("doc = %+v", doc)
	}

	var fails []failureDoc
	if err := json.Unmarshal([]byte(read(t, dir, ErrorsJSONFile)), &fails); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(fails) != 1 || fails[0].Kind != "record" || fails[0].Code != "validation" || fails[0].Expiry != "x" {
		t.Fatalf("fails = %+v", fails)
	}
	if _, err := os.Stat(filepath.Join(dir, ErrorsTextFile)); !os.IsNotExist(err) {
		t.Fatalf("json format should not create %s", ErrorsTextFile)
	}
}

func TestJSONWriter_NoFailuresWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Dir: dir, Format: FormatJSON})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := strings.TrimSpace(read(t, dir, ErrorsJSONFile)); got != "[]" {
		t.Fatalf("errors.json = %q", got)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Dir: t.TempDir(), Format: "xml"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}
