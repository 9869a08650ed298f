// Package store holds the optional result sinks behind small seams.
// A Store with no backend configured is valid and simply does nothing
package store

import (
	"context"
	"errors"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
)

// Store carries whichever backends were enabled at Open
type Store struct {
	Log logger.Logger

	// PG is nil unless SERVICE_PGSQL_DBURL is set
	PG TxRunner

	// CH is nil unless SERVICE_CLICKHOUSE_DBURL is set
	CH Clickhouse
}

// Row is a single scanned row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos write through
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn in one transaction, rolling back when fn fails
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar sink seam. Insert rows follow the table column order
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Option mutates the Store before backends are opened
type Option func(*Store)

// WithLogger sets the logger handed to backend tracers
func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open dials every backend enabled in cfg. Backends left disabled stay nil
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: logger.Get().With().Str("component", "store").Logger()}
	for _, o := range opts {
		o(s)
	}

	if cfg.PG.Enabled {
		db, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = db
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			s.closePG()
			return nil, err
		}
		s.CH = c
	}
	return s, nil
}

// Configured reports whether any backend is open
func (s *Store) Configured() bool { return s != nil && (s.PG != nil || s.CH != nil) }

// Guard pings every open backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return perr.Newf(perr.ErrorCodeUnavailable, "store: nil")
	}
	var errs []error
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrapf(err, perr.ErrorCodeUnavailable, "pg ping"))
		}
	}
	if p, ok := s.CH.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ch ping"))
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	errs = append(errs, s.closePG())
	return errors.Join(errs...)
}

func (s *Store) closePG() error {
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
