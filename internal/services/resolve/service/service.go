// Package service provides the batch resolver
package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"enscheck/internal/core/namehash"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
	"enscheck/internal/services/resolve/metrics"
)

// Metric status labels for classified names
const (
	StatusUnregistered = domain.StatusUnregistered
	StatusExpired      = domain.StatusExpired
	StatusActive       = domain.StatusActive
	StatusDropped      = domain.StatusDropped
	StatusSkipped      = domain.StatusSkipped
)

// Config holds configuration options for the resolver
type Config struct {
	BatchSize int           // identifiers per registry call; 1..domain.MaxBatchSize
	Delay     time.Duration // pause after each successful batch; must be >= 0
	Scheme    domain.Scheme // "" -> labelhash
	TLD       string        // appended before hashing under the namehash scheme

	Now   func() time.Time                                // nil -> time.Now
	Sleep func(ctx context.Context, d time.Duration) error // nil -> context-aware timer
}

// DefaultConfig returns the registry contract defaults
func DefaultConfig() Config {
	return Config{
		BatchSize: domain.DefaultBatchSize,
		Delay:     domain.DefaultDelay,
		Scheme:    domain.SchemeLabelHash,
		TLD:       "eth",
	}
}

// Resolver classifies a stream of names against a registry, one batch at a time
type Resolver struct {
	Registry domain.Registry
	Norm     domain.Normalizer
	Failures domain.FailureSink
	Observer domain.Observer
	Metrics  *metrics.Metrics
	Cfg      Config
}

// Option customizes a Resolver
type Option func(*Resolver)

// WithFailureSink sets the diagnostics side-channel
func WithFailureSink(s domain.FailureSink) Option { return func(r *Resolver) { r.Failures = s } }

// WithObserver sets the progress observer
func WithObserver(o domain.Observer) Option { return func(r *Resolver) { r.Observer = o } }

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Metrics) Option { return func(r *Resolver) { r.Metrics = m } }

// New constructs the resolver. A nil normalizer means names are used as given
func New(reg domain.Registry, norm domain.Normalizer, cfg Config, opts ...Option) *Resolver {
	if reg == nil {
		panic("resolve.Resolver requires a non nil Registry")
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > domain.MaxBatchSize {
		panic("resolve.Resolver requires a BatchSize in 1.." + strconv.Itoa(domain.MaxBatchSize))
	}
	if cfg.Delay < 0 {
		panic("resolve.Resolver requires a non negative Delay")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = domain.SchemeLabelHash
	}
	if !cfg.Scheme.Valid() {
		panic("resolve.Resolver: unknown identifier scheme " + string(cfg.Scheme))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	if norm == nil {
		norm = identity{}
	}
	r := &Resolver{Registry: reg, Norm: norm, Cfg: cfg}
	for _, o := range opts {
		o(r)
	}
	return r
}

// With returns a copy of the resolver with opts applied. The copy shares the
// registry and normalizer, so per-request sinks can be attached concurrently
func (r *Resolver) With(opts ...Option) *Resolver {
	cp := *r
	for _, o := range opts {
		o(&cp)
	}
	return &cp
}

// Resolve drains src and returns the classification. On cancellation the
// partial result is returned together with ctx.Err()
func (r *Resolver) Resolve(ctx context.Context, src domain.NameSource) (domain.Result, error) {
	log := logger.C(ctx)
	res := domain.Result{Unregistered: []string{}, Expired: []domain.ExpiredEntry{}}
	batch := newPendingBatch(r.Cfg.BatchSize)
	run := &runState{started: time.Now()}

	for {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, &res, run), err
		}
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, domain.ErrSkipLine) {
				res.Stats.Read++
				r.skip(&res)
				continue
			}
			return r.finish(ctx, &res, run), perr.Wrap(err, perr.ErrorCodeUnknown, "read names")
		}
		res.Stats.Read++

		name, err := r.Norm.Normalize(raw)
		if err != nil {
			log.Warn().Err(err).Str("raw", raw).Msg("resolve: name rejected by normalizer")
			r.skip(&res)
			continue
		}
		if name == "" {
			r.skip(&res)
			continue
		}

		id := r.Cfg.Scheme.Identify(name, r.Cfg.TLD)
		if prev, collided := batch.put(id, name); collided {
			res.Stats.Collisions++
			r.Metrics.IncCollision()
			log.Warn().Str("id", id.String()).Str("kept", name).Str("replaced", prev).
				Msg("resolve: identifier collision in pending batch")
		}

		if batch.len() >= r.Cfg.BatchSize {
			if err := r.submit(ctx, batch, &res, run, true); err != nil {
				return r.finish(ctx, &res, run), err
			}
		}
	}

	// the end-of-stream flush has no next batch to pace
	if batch.len() > 0 {
		if err := r.submit(ctx, batch, &res, run, false); err != nil {
			return r.finish(ctx, &res, run), err
		}
	}

	out := r.finish(ctx, &res, run)
	log.Info().
		Int("read", out.Stats.Read).
		Int("processed", out.Stats.Processed).
		Int("unregistered", out.Stats.Unregistered).
		Int("expired", out.Stats.Expired).
		Int("batch_fails", out.Stats.BatchFails).
		Dur("elapsed", time.Since(run.started)).
		Msg("resolve: run complete")
	return out, nil
}

type runState struct {
	started time.Time
	seq     int
}

func (r *Resolver) skip(res *domain.Result) {
	res.Stats.Skipped++
	r.Metrics.AddNames(StatusSkipped, 1)
}

// submit sends the pending batch, reconciles the response and clears the batch.
// When pace is set a successful batch is followed by the configured delay.
// The only error it returns is a context error
func (r *Resolver) submit(ctx context.Context, b *pendingBatch, res *domain.Result, run *runState, pace bool) error {
	defer b.reset()

	run.seq++
	seq := run.seq
	ids, names := b.snapshot()
	log := logger.C(ctx).With().Int("batch", seq).Int("size", len(ids)).Logger()

	start := time.Now()
	recs, err := r.Registry.Lookup(ctx, ids)
	res.Stats.Batches++
	r.Metrics.ObserveLookup(start, len(ids), err != nil)

	if err != nil {
		res.Stats.BatchFails++
		res.Stats.Dropped += len(ids)
		r.Metrics.AddNames(StatusDropped, len(ids))
		log.Warn().Err(err).Msg("resolve: batch failed, dropping")
		if r.Failures != nil {
			r.Failures.BatchFailed(ctx, domain.BatchFailure{
				Seq: seq, Names: names, IDs: ids, Err: err, At: r.Cfg.Now(),
			})
		}
		return ctx.Err()
	}

	rc := reconcile(ids, names, recs, r.Cfg.Now())
	res.Unregistered = append(res.Unregistered, rc.unregistered...)
	res.Expired = append(res.Expired, rc.expired...)
	res.Stats.Processed += len(ids)
	res.Stats.RecordFails += len(rc.rejected)

	r.Metrics.AddNames(StatusUnregistered, len(rc.unregistered))
	r.Metrics.AddNames(StatusExpired, len(rc.expired))
	r.Metrics.AddNames(StatusActive, rc.active)

	for _, f := range rc.rejected {
		f.Seq = seq
		f.At = r.Cfg.Now()
		r.Metrics.IncRecordFail()
		log.Warn().Err(f.Err).Str("name", f.Name).Str("expiry", f.Record.ExpiresAt).
			Msg("resolve: record rejected")
		if r.Failures != nil {
			r.Failures.RecordRejected(ctx, f)
		}
	}

	log.Debug().
		Int("records", len(recs)).
		Int("unregistered", len(rc.unregistered)).
		Int("expired", len(rc.expired)).
		Dur("took", time.Since(start)).
		Msg("resolve: batch reconciled")

	if r.Observer != nil {
		st := res.Stats
		st.Unregistered = len(res.Unregistered)
		st.Expired = len(res.Expired)
		r.Observer.Progress(ctx, domain.Progress{
			Seq: seq, Size: len(ids), Elapsed: time.Since(run.started), Stats: st,
		})
	}

	if !pace {
		return ctx.Err()
	}
	return r.Cfg.Sleep(ctx, r.Cfg.Delay)
}

// finish sorts the expired list and fills the derived counters
func (r *Resolver) finish(ctx context.Context, res *domain.Result, run *runState) domain.Result {
	slices.SortStableFunc(res.Expired, func(a, b domain.ExpiredEntry) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	res.Stats.Unregistered = len(res.Unregistered)
	res.Stats.Expired = len(res.Expired)
	if r.Observer != nil {
		r.Observer.Progress(ctx, domain.Progress{
			Seq: run.seq, Elapsed: time.Since(run.started), Stats: res.Stats, Finished: true,
		})
	}
	return *res
}

type reconciled struct {
	unregistered []string
	expired      []domain.ExpiredEntry
	rejected     []domain.RecordFailure
	active       int
}

type parsedRecord struct {
	rec domain.Record
	exp time.Time
	err error
}

// reconcile classifies every submitted identifier exactly once.
// ids and names are parallel and in submission order
func reconcile(ids []namehash.ID, names []string, recs []domain.Record, now time.Time) reconciled {
	byID := make(map[namehash.ID]parsedRecord, len(recs))
	for _, rec := range recs {
		exp, err := ParseExpiry(rec.ExpiresAt)
		cur := parsedRecord{rec: rec, exp: exp, err: err}
		prev, seen := byID[rec.ID]
		if !seen || betterRecord(cur, prev) {
			byID[rec.ID] = cur
		}
	}

	var out reconciled
	for i, id := range ids {
		p, ok := byID[id]
		switch {
		case !ok:
			out.unregistered = append(out.unregistered, names[i])
		case p.err != nil:
			out.rejected = append(out.rejected, domain.RecordFailure{Name: names[i], Record: p.rec, Err: p.err})
		case p.exp.Before(now):
			out.expired = append(out.expired, domain.ExpiredEntry{Name: names[i], ExpiresAt: p.exp})
		default:
			out.active++
		}
	}
	return out
}

// betterRecord prefers parseable records, then the latest expiry
func betterRecord(cur, prev parsedRecord) bool {
	if prev.err != nil {
		return cur.err == nil
	}
	return cur.err == nil && cur.exp.After(prev.exp)
}

// ParseExpiry parses a decimal UNIX-seconds timestamp into UTC
func ParseExpiry(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, perr.Newf(perr.ErrorCodeValidation, "expiry: empty timestamp")
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, perr.Wrapf(err, perr.ErrorCodeValidation, "expiry: malformed timestamp %q", s)
	}
	return time.Unix(sec, 0).UTC(), nil
}

type identity struct{}

func (identity) Normalize(s string) (string, error) { return s, nil }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
