package module

import (
	"context"
	"sync"
	"time"

	"enscheck/internal/adapters/input/lines"
	"enscheck/internal/core/namehash"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/platform/net/http/bind"
	"enscheck/internal/services/resolve/domain"
	"enscheck/internal/services/resolve/service"

	"github.com/google/uuid"
)

// SourceAPI tags runs started over HTTP
const SourceAPI = "api"

// apiService is the request-scoped facade behind the HTTP handlers
type apiService struct {
	w   *Wiring
	now func() time.Time
}

func newAPIService(w *Wiring) *apiService {
	return &apiService{w: w, now: time.Now}
}

// Hash normalizes name and returns its identifiers
func (a *apiService) Hash(_ context.Context, raw string) (domain.HashOutput, error) {
	name, err := a.w.Norm.Normalize(raw)
	if err != nil {
		return domain.HashOutput{}, err
	}
	if name == "" {
		return domain.HashOutput{}, perr.Newf(perr.ErrorCodeValidation, "name is empty after normalization")
	}
	full := name
	if tld := a.w.Options.TLD; tld != "" {
		full = name + "." + tld
	}
	scheme := domain.Scheme(a.w.Options.Scheme)
	return domain.HashOutput{
		Input:     raw,
		Name:      name,
		Full:      full,
		LabelHash: namehash.LabelHash(name).String(),
		NameHash:  namehash.NameHash(full).String(),
		Scheme:    scheme,
		ID:        scheme.Identify(name, a.w.Options.TLD).String(),
	}, nil
}

// ResolveNames classifies in.Names synchronously and persists the run when a store is configured
func (a *apiService) ResolveNames(ctx context.Context, in domain.ResolveInput) (domain.ResolveOutput, error) {
	if err := bind.Validate(in); err != nil {
		return domain.ResolveOutput{}, err
	}
	if n, limit := len(in.Names), a.w.Options.MaxNames; n > limit {
		return domain.ResolveOutput{}, perr.Newf(perr.ErrorCodeValidation, "too many names: %d (limit %d)", n, limit)
	}

	run := domain.RunInfo{
		ID:        uuid.NewString(),
		Source:    SourceAPI,
		Registry:  a.w.Registry.URL(),
		Scheme:    domain.Scheme(a.w.Options.Scheme),
		StartedAt: a.now().UTC(),
	}
	ctx = logger.WithRun(ctx, run.ID)

	col := &failureCollector{}
	sinks := domain.FailureSinks{col}
	var out domain.ResultSink
	if s := a.w.NewSink(); s != nil {
		sinks = append(sinks, s)
		out = s
	}

	res, err := a.w.Resolver.With(service.WithFailureSink(sinks)).Resolve(ctx, lines.FromSlice(in.Names))
	if err != nil {
		return domain.ResolveOutput{}, err
	}
	run.FinishedAt = a.now().UTC()

	resp := domain.ResolveOutput{RunID: run.ID, Result: res, Failures: col.list()}
	if out != nil {
		if err := out.WriteResult(ctx, run, res); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("resolve: persisting api run failed")
		} else {
			resp.Persisted = true
		}
	}
	return resp, nil
}

// failureCollector keeps flattened diagnostics for the response body
type failureCollector struct {
	mu    sync.Mutex
	items []domain.StoredFailure
}

func (c *failureCollector) BatchFailed(_ context.Context, f domain.BatchFailure) {
	c.add(domain.FlattenBatch(f, perr.CodeOf(f.Err).String()))
}

func (c *failureCollector) RecordRejected(_ context.Context, f domain.RecordFailure) {
	c.add(domain.FlattenRecord(f, perr.CodeOf(f.Err).String()))
}

func (c *failureCollector) add(f domain.StoredFailure) {
	c.mu.Lock()
	c.items = append(c.items, f)
	c.mu.Unlock()
}

func (c *failureCollector) list() []domain.StoredFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.StoredFailure{}, c.items...)
}
