// Command enscheck resolves a list of names against the ENS registry and reports
// which are unregistered and which have expired
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"enscheck/internal/adapters/input/lines"
	"enscheck/internal/adapters/report"
	"enscheck/internal/modkit"
	"enscheck/internal/modkit/module"
	"enscheck/internal/modkit/repokit"
	"enscheck/internal/platform/config"
	"enscheck/internal/platform/logger"
	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/store"
	"enscheck/internal/services/resolve/domain"
	resolvemod "enscheck/internal/services/resolve/module"
	"enscheck/internal/services/resolve/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fIn      = flag.String("in", "names.txt", "names file, one per line; - for stdin; gzip is detected")
		fOut     = flag.String("out", "out", "report directory")
		fFormat  = flag.String("format", "text", "report format: text | json")
		fBatch   = flag.Int("batch", 0, "names per registry request (default CORE_RESOLVE_BATCH_SIZE or 100)")
		fDelay   = flag.String("delay", "", "pause after each batch, e.g. 1s (default CORE_RESOLVE_DELAY or 1s)")
		fScheme  = flag.String("scheme", "", "identifier scheme: labelhash | namehash")
		fURL     = flag.String("url", "", "registry GraphQL endpoint (default CORE_ENS_URL)")
		fStrict  = flag.Bool("strict", false, "apply UTS-46 mapping and skip names it rejects")
		fYes     = flag.Bool("yes", false, "skip the confirmation prompt")
		fMetrics = flag.String("metrics-addr", "", "serve /metrics on this address while running, e.g. :9100 (default CORE_METRICS_PORT)")
		fEvery   = flag.Int("progress-every", 10, "log progress every N batches")
	)
	flag.Parse()

	root := config.New()
	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = "enscheck"
	}
	logger.Init(lo)
	l := logger.Get()

	// Surface flags to the module, which reads CORE_RESOLVE_* and CORE_ENS_*
	if *fBatch > 0 {
		mustSetEnv("CORE_RESOLVE_BATCH_SIZE", strconv.Itoa(*fBatch))
	}
	mustSetEnv("CORE_RESOLVE_DELAY", *fDelay)
	mustSetEnv("CORE_RESOLVE_SCHEME", *fScheme)
	mustSetEnv("CORE_ENS_URL", *fURL)
	mustSetEnv("CORE_METRICS_PORT", *fMetrics)
	if *fStrict {
		mustSetEnv("CORE_RESOLVE_STRICT", "true")
	}

	opts := resolvemod.FromConfig(root)
	if err := opts.Validate(); err != nil {
		l.Fatal().Err(err).Msg("invalid options")
	}

	if !*fYes && *fIn != lines.Stdin {
		n, err := lines.Count(*fIn)
		if err != nil {
			l.Fatal().Err(err).Str("in", *fIn).Msg("count names failed")
		}
		if !confirm(fmt.Sprintf("Process %d names against %s? [y/N] ", n, opts.ENSURL)) {
			l.Info().Msg("aborted")
			return
		}
	}

	st := openStore(root, l)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.DepsFrom(root, st, l)
	w, err := resolvemod.Wire(deps, opts, nil, service.WithObserver(resolvemod.ProgressLogger{Every: *fEvery}))
	if err != nil {
		l.Fatal().Err(err).Msg("wire resolver failed")
	}
	m := resolvemod.NewWith(w)
	module.Register(m.Name(), m.Ports())

	rep, err := report.New(report.Options{Dir: *fOut, Format: report.Format(*fFormat)})
	if err != nil {
		l.Fatal().Err(err).Msg("open report failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if w.Persistent() {
		if err := w.EnsureSchema(ctx); err != nil {
			l.Fatal().Err(err).Msg("ensure schema failed")
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	mc := root.Prefix("CORE_METRICS_")
	if mc.MayString("PORT", "") != "" {
		msrv := phttp.NewServer(mc)
		msrv.Router().Handle("/metrics", promhttp.Handler())
		g.Go(func() error { return msrv.Run(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		return run(gctx, w, rep, *fIn)
	})
	if err := g.Wait(); err != nil {
		l.Fatal().Err(err).Msg("resolve failed")
	}
}

// run resolves one input file and writes the result to the report and any configured store
func run(ctx context.Context, w *resolvemod.Wiring, rep *report.Writer, in string) error {
	src, err := lines.Open(in)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	info := domain.RunInfo{
		ID:        uuid.NewString(),
		Source:    in,
		Registry:  w.Registry.URL(),
		Scheme:    domain.Scheme(w.Options.Scheme),
		StartedAt: time.Now().UTC(),
	}
	ctx = logger.WithRun(ctx, info.ID)
	log := logger.C(ctx)

	failures := domain.FailureSinks{rep}
	results := domain.ResultSinks{rep}
	if s := w.NewSink(); s != nil {
		failures = append(failures, s)
		results = append(results, s)
	}

	res, rerr := w.Resolver.With(service.WithFailureSink(failures)).Resolve(ctx, src)
	info.FinishedAt = time.Now().UTC()
	info.Interrupted = rerr != nil && ctx.Err() != nil
	if rerr != nil && !info.Interrupted {
		info.Aborted = rerr.Error()
	}

	// partial results of an interrupted or aborted run are still written
	wctx := context.WithoutCancel(ctx)
	err = errors.Join(results.WriteResult(wctx, info, res), rep.Close())
	if info.Aborted != "" {
		err = errors.Join(rerr, err)
	}

	log.Info().
		Str("out", rep.Dir()).
		Int("lines", src.Lines()).
		Int("unregistered", res.Stats.Unregistered).
		Int("expired", res.Stats.Expired).
		Int("batch_fails", res.Stats.BatchFails).
		Int("record_fails", res.Stats.RecordFails).
		Bool("interrupted", info.Interrupted).
		Str("aborted", info.Aborted).
		Msg("report written")
	return err
}

// openStore opens the optional sinks; each is enabled by its DBURL
func openStore(root config.Conf, l *logger.Logger) *store.Store {
	st, err := store.Open(context.Background(), store.FromEnv(root, "enscheck", "cli"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	if st.Configured() {
		repokit.MustGuard(context.Background(), st)
	}
	return st
}

func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
