package repo

import (
	"context"
	"errors"
	"sync"

	"enscheck/internal/modkit/repokit"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
)

// Sink persists a finished run to the configured backends.
// It buffers diagnostics during the run and writes everything in WriteResult
type Sink struct {
	DB     repokit.TxRunner                   // optional
	Binder repokit.Binder[domain.StorageRepo] // nil -> NewPG()
	CH     *CHWriter                          // optional

	mu       sync.Mutex
	failures []domain.StoredFailure
}

var (
	_ domain.ResultSink  = (*Sink)(nil)
	_ domain.FailureSink = (*Sink)(nil)
)

// NewSink constructs a Sink; either backend may be nil
func NewSink(db repokit.TxRunner, ch *CHWriter) *Sink {
	return &Sink{DB: db, Binder: NewPG(), CH: ch}
}

// BatchFailed implements domain.FailureSink
func (s *Sink) BatchFailed(_ context.Context, f domain.BatchFailure) {
	s.add(domain.FlattenBatch(f, perr.CodeOf(f.Err).String()))
}

// RecordRejected implements domain.FailureSink
func (s *Sink) RecordRejected(_ context.Context, f domain.RecordFailure) {
	s.add(domain.FlattenRecord(f, perr.CodeOf(f.Err).String()))
}

func (s *Sink) add(f domain.StoredFailure) {
	s.mu.Lock()
	s.failures = append(s.failures, f)
	s.mu.Unlock()
}

// Failures returns a copy of the buffered diagnostics
func (s *Sink) Failures() []domain.StoredFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StoredFailure(nil), s.failures...)
}

// WriteResult implements domain.ResultSink
func (s *Sink) WriteResult(ctx context.Context, run domain.RunInfo, res domain.Result) error {
	log := logger.C(ctx).With().Str("run_id", run.ID).Logger()
	var errs []error

	if s.DB != nil {
		if err := s.writePG(ctx, run, res); err != nil {
			errs = append(errs, err)
		} else {
			log.Info().Int("unregistered", len(res.Unregistered)).Int("expired", len(res.Expired)).
				Msg("resolve: run persisted to postgres")
		}
	}
	if s.CH != nil {
		n, err := s.CH.Write(ctx, run, res)
		if err != nil {
			errs = append(errs, perr.Wrap(err, perr.ErrorCodeDB, "clickhouse write failed"))
		} else {
			log.Info().Int("rows", n).Msg("resolve: run appended to clickhouse")
		}
	}
	return errors.Join(errs...)
}

// writePG runs the inserts in one transaction and retries once on a retryable error
func (s *Sink) writePG(ctx context.Context, run domain.RunInfo, res domain.Result) error {
	binder := s.Binder
	if binder == nil {
		binder = NewPG()
	}
	failures := s.Failures()

	write := func(q repokit.Queryer) error {
		r := repokit.MustBind(binder, q)
		if err := r.InsertRun(ctx, run, res.Stats); err != nil {
			return err
		}
		if _, err := r.InsertUnregistered(ctx, run.ID, res.Unregistered); err != nil {
			return err
		}
		if _, err := r.InsertExpired(ctx, run.ID, res.Expired); err != nil {
			return err
		}
		_, err := r.InsertFailures(ctx, run.ID, failures)
		return err
	}

	return perr.FromPostgres(repokit.WithTxRetry(ctx, s.DB, 2, write), "persist run")
}
