package domain

import (
	"context"
	"errors"

	"enscheck/internal/core/namehash"
)

// ErrSkipLine is returned by a NameSource for a line that could not be read.
// The resolver counts it as skipped and keeps going
var ErrSkipLine = errors.New("resolve: unreadable line")

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Resolve(ctx context.Context, src NameSource) (Result, error)
}

// NameSource yields raw names in arrival order and io.EOF at the end
type NameSource interface {
	Next() (string, error)
}

// Registry looks up a batch of identifiers. Identifiers that are not registered
// are simply absent from the returned records
type Registry interface {
	Lookup(ctx context.Context, ids []namehash.ID) ([]Record, error)
}

// Normalizer applies the caller's name policy before hashing
type Normalizer interface {
	Normalize(s string) (string, error)
}

// FailureSink is the diagnostics side-channel. Implementations must not block for long;
// they are called inline from the pipeline
type FailureSink interface {
	BatchFailed(ctx context.Context, f BatchFailure)
	RecordRejected(ctx context.Context, f RecordFailure)
}

// Observer receives progress after each reconciled batch
type Observer interface {
	Progress(ctx context.Context, p Progress)
}

// ResultSink consumes the final classification
type ResultSink interface {
	WriteResult(ctx context.Context, run RunInfo, res Result) error
}

// FailureSinks fans a failure out to several sinks
type FailureSinks []FailureSink

// BatchFailed implements FailureSink
func (fs FailureSinks) BatchFailed(ctx context.Context, f BatchFailure) {
	for _, s := range fs {
		if s != nil {
			s.BatchFailed(ctx, f)
		}
	}
}

// RecordRejected implements FailureSink
func (fs FailureSinks) RecordRejected(ctx context.Context, f RecordFailure) {
	for _, s := range fs {
		if s != nil {
			s.RecordRejected(ctx, f)
		}
	}
}

// ResultSinks writes a result to every sink and joins the errors
type ResultSinks []ResultSink

// WriteResult implements ResultSink
func (rs ResultSinks) WriteResult(ctx context.Context, run RunInfo, res Result) error {
	var errs []error
	for _, s := range rs {
		if s == nil {
			continue
		}
		if err := s.WriteResult(ctx, run, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Observers fans progress out to several observers
type Observers []Observer

// Progress implements Observer
func (obs Observers) Progress(ctx context.Context, p Progress) {
	for _, o := range obs {
		if o != nil {
			o.Progress(ctx, p)
		}
	}
}

// StorageRepo persists finished runs. Bound to a single transaction by a repokit.Binder
type StorageRepo interface {
	InsertRun(ctx context.Context, run RunInfo, st Stats) error
	InsertUnregistered(ctx context.Context, runID string, names []string) (int64, error)
	InsertExpired(ctx context.Context, runID string, entries []ExpiredEntry) (int64, error)
	InsertFailures(ctx context.Context, runID string, fs []StoredFailure) (int64, error)
}
