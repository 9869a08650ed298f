// Package report writes resolve results and diagnostics to an output directory
package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
)

// Format selects the report encoding
type Format string

// Supported formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// File names inside the output directory
const (
	RunTextFile      = "run.txt"
	UnregisteredFile = "unregistered.txt"
	ExpiredFile      = "expired.txt"
	ErrorsTextFile   = "errors.txt"
	ResultJSONFile   = "result.json"
	ErrorsJSONFile   = "errors.json"
)

// Options configures a Writer
type Options struct {
	Dir    string `validate:"required"`
	Format Format `validate:"oneof=text json"`
}

// Writer implements domain.ResultSink and domain.FailureSink on the filesystem.
// Text diagnostics are appended as they happen; JSON diagnostics are written on Close
type Writer struct {
	opts Options

	mu       sync.Mutex
	errFile  *os.File
	errBuf   *bufio.Writer
	failures []failureDoc
	closed   bool
}

// New prepares the output directory and truncates previous diagnostics
func New(opts Options) (*Writer, error) {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Format != FormatText && opts.Format != FormatJSON {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "report: unknown format %q", opts.Format)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "report: create %s", opts.Dir)
	}
	w := &Writer{opts: opts}
	if opts.Format == FormatText {
		f, err := os.Create(filepath.Join(opts.Dir, ErrorsTextFile))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "report: create %s", ErrorsTextFile)
		}
		w.errFile = f
		w.errBuf = bufio.NewWriter(f)
	}
	return w, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string { return w.opts.Dir }

type failureDoc struct {
	Kind   string    `json:"kind"` // batch | record
	Batch  int       `json:"batch"`
	At     time.Time `json:"at"`
	Error  string    `json:"error"`
	Code   string    `json:"code"`
	Names  []string  `json:"names,omitempty"`
	IDs    []string  `json:"ids,omitempty"`
	Name   string    `json:"name,omitempty"`
	Expiry string    `json:"expiry,omitempty"`
}

// BatchFailed implements domain.FailureSink
func (w *Writer) BatchFailed(ctx context.Context, f domain.BatchFailure) {
	doc := failureDoc{Kind: "batch", Batch: f.Seq, At: f.At.UTC(), Error: errString(f.Err), Code: codeString(f.Err), Names: f.Names}
	for _, id := range f.IDs {
		doc.IDs = append(doc.IDs, id.String())
	}
	w.record(ctx, doc)
}

// RecordRejected implements domain.FailureSink
func (w *Writer) RecordRejected(ctx context.Context, f domain.RecordFailure) {
	w.record(ctx, failureDoc{
		Kind: "record", Batch: f.Seq, At: f.At.UTC(), Error: errString(f.Err), Code: codeString(f.Err),
		Name: f.Name, Expiry: f.Record.ExpiresAt,
	})
}

func (w *Writer) record(ctx context.Context, doc failureDoc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.errBuf == nil {
		w.failures = append(w.failures, doc)
		return
	}
	if err := writeFailureText(w.errBuf, doc); err == nil {
		err = w.errBuf.Flush()
		if err != nil {
			logger.C(ctx).Error().Err(err).Msg("report: flush errors file failed")
		}
	} else {
		logger.C(ctx).Error().Err(err).Msg("report: write errors file failed")
	}
}

func writeFailureText(out io.Writer, d failureDoc) error {
	var err error
	switch d.Kind {
	case "batch":
		_, err = fmt.Fprintf(out, "%s batch %d failed (%d names): %s\n", d.At.Format(time.RFC3339), d.Batch, len(d.Names), d.Error)
		for i, n := range d.Names {
			if err != nil {
				break
			}
			id := ""
			if i < len(d.IDs) {
				id = d.IDs[i]
			}
			_, err = fmt.Fprintf(out, "\t%s\t%s\n", n, id)
		}
	default:
		_, err = fmt.Fprintf(out, "%s batch %d record %s rejected (expiry %q): %s\n", d.At.Format(time.RFC3339), d.Batch, d.Name, d.Expiry, d.Error)
	}
	if err == nil {
		_, err = io.WriteString(out, "\n")
	}
	return err
}

type runDoc struct {
	ID          string        `json:"id"`
	Source      string        `json:"source,omitempty"`
	Registry    string        `json:"registry,omitempty"`
	Scheme      domain.Scheme `json:"scheme"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Interrupted bool          `json:"interrupted"`
	Aborted     string        `json:"aborted,omitempty"`
	Partial     bool          `json:"partial"`
}

type resultDoc struct {
	Run    runDoc        `json:"run"`
	Result domain.Result `json:"result"`
}

// WriteResult implements domain.ResultSink
func (w *Writer) WriteResult(_ context.Context, run domain.RunInfo, res domain.Result) error {
	if w.opts.Format == FormatJSON {
		doc := resultDoc{
			Run: runDoc{
				ID: run.ID, Source: run.Source, Registry: run.Registry, Scheme: run.Scheme,
				StartedAt: run.StartedAt.UTC(), FinishedAt: run.FinishedAt.UTC(), Interrupted: run.Interrupted,
				Aborted: run.Aborted, Partial: run.Partial(),
			},
			Result: res,
		}
		return w.writeFile(ResultJSONFile, func(out io.Writer) error {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		})
	}

	if err := w.writeFile(RunTextFile, func(out io.Writer) error {
		return writeRunText(out, run, res.Stats)
	}); err != nil {
		return err
	}
	if err := w.writeFile(UnregisteredFile, func(out io.Writer) error {
		for _, n := range res.Unregistered {
			if _, err := fmt.Fprintln(out, n); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return w.writeFile(ExpiredFile, func(out io.Writer) error {
		for _, e := range res.Expired {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", e.Name, e.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRunText writes one "key<TAB>value" line per run attribute and counter
func writeRunText(out io.Writer, run domain.RunInfo, st domain.Stats) error {
	ts := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	lines := [][2]string{
		{"run_id", run.ID},
		{"source", run.Source},
		{"registry", run.Registry},
		{"scheme", string(run.Scheme)},
		{"started_at", ts(run.StartedAt)},
		{"finished_at", ts(run.FinishedAt)},
		{"partial", strconv.FormatBool(run.Partial())},
		{"interrupted", strconv.FormatBool(run.Interrupted)},
	}
	if run.Aborted != "" {
		lines = append(lines, [2]string{"aborted", run.Aborted})
	}
	for _, c := range []struct {
		k string
		v int
	}{
		{"read", st.Read}, {"skipped", st.Skipped}, {"processed", st.Processed}, {"dropped", st.Dropped},
		{"batches", st.Batches}, {"batch_fails", st.BatchFails}, {"record_fails", st.RecordFails},
		{"unregistered", st.Unregistered}, {"expired", st.Expired}, {"collisions", st.Collisions},
	} {
		lines = append(lines, [2]string{c.k, strconv.Itoa(c.v)})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes name atomically through a temp file in the same directory
func (w *Writer) writeFile(name string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(w.opts.Dir, "."+name+".*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "report: create %s", name)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "report: write %s", name)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "report: flush %s", name)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "report: close %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.opts.Dir, name)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "report: rename %s", name)
	}
	return nil
}

// Close flushes diagnostics. It is safe to call more than once
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	if w.errFile != nil {
		ferr := w.errBuf.Flush()
		cerr := w.errFile.Close()
		if ferr != nil {
			return perr.Wrap(ferr, perr.ErrorCodeUnknown, "report: flush errors")
		}
		return perr.WrapIf(cerr, perr.ErrorCodeUnknown, "report: close errors")
	}

	failures := w.failures
	if failures == nil {
		failures = []failureDoc{}
	}
	return w.writeFile(ErrorsJSONFile, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(failures)
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func codeString(err error) string {
	if err == nil {
		return ""
	}
	return perr.CodeOf(err).String()
}
