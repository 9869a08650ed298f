package module

import (
	"context"
	"errors"

	"enscheck/internal/adapters/registry/ens"
	"enscheck/internal/core/normalize"
	"enscheck/internal/modkit"
	"enscheck/internal/modkit/repokit"
	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
	"enscheck/internal/services/resolve/metrics"
	"enscheck/internal/services/resolve/repo"
	"enscheck/internal/services/resolve/service"

	"github.com/prometheus/client_golang/prometheus"
)

// Wiring is the assembled resolver stack shared by the CLI and the API
type Wiring struct {
	Options  Options
	Registry *ens.Client
	Norm     *normalize.Normalizer
	Metrics  *metrics.Metrics
	Resolver *service.Resolver

	db repokit.TxRunner
	ch *repo.CHWriter
}

// Wire validates o and builds the registry client, normalizer, metrics and resolver.
// reg may be nil for the default prometheus registerer
func Wire(deps modkit.Deps, o Options, reg prometheus.Registerer, extra ...service.Option) (*Wiring, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	scheme := domain.Scheme(o.Scheme)

	w := &Wiring{
		Options: o,
		Registry: ens.NewClient(ens.Options{
			URL:       o.ENSURL,
			UserAgent: o.ENSUserAgent,
			Timeout:   o.ENSTimeout,
			APIKey:    o.ENSAPIKey,
			Scheme:    scheme,
		}),
		Norm:    normalize.New(normalize.Options{Suffix: o.Suffix, Strict: o.Strict}),
		Metrics: metrics.New(reg),
	}
	if deps.PG != nil {
		w.db = deps.PG
		if o.PGStatementTimeout > 0 {
			w.db = repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(o.PGStatementTimeout))
		}
	}
	if deps.CH != nil {
		w.ch = &repo.CHWriter{CH: deps.CH}
	}

	cfg := service.DefaultConfig()
	cfg.BatchSize = o.BatchSize
	cfg.Delay = o.Delay
	cfg.Scheme = scheme
	cfg.TLD = o.TLD

	opts := append([]service.Option{service.WithMetrics(w.Metrics)}, extra...)
	w.Resolver = service.New(w.Registry, w.Norm, cfg, opts...)

	logger.Named("resolve").Info().
		Str("registry", w.Registry.URL()).
		Str("scheme", o.Scheme).
		Int("batch_size", o.BatchSize).
		Dur("delay", o.Delay).
		Bool("pg", w.db != nil).
		Bool("ch", w.ch != nil).
		Msg("resolve wired")
	return w, nil
}

// Persistent reports whether any store sink is configured
func (w *Wiring) Persistent() bool { return w.db != nil || w.ch != nil }

// NewSink returns a fresh per-run persistence sink, nil when no store is configured
func (w *Wiring) NewSink() *repo.Sink {
	if !w.Persistent() {
		return nil
	}
	return repo.NewSink(w.db, w.ch)
}

// EnsureSchema creates the result tables on every configured store
func (w *Wiring) EnsureSchema(ctx context.Context) error {
	var errs []error
	if w.db != nil {
		errs = append(errs, repo.EnsureSchemaPG(ctx, w.db))
	}
	if w.ch != nil {
		errs = append(errs, w.ch.EnsureSchema(ctx))
	}
	return errors.Join(errs...)
}
