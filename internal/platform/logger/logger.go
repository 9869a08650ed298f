// Package logger owns the process zerolog logger and its context enrichment
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"enscheck/internal/platform/config/raw"
	pnet "enscheck/internal/platform/net"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type used across the module
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string // zerolog level name; unknown names mean debug
	Format  string // console or json
	Service string
	Caller  bool
	Writer  io.Writer // default stderr
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "info"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: rc.Get("SERVICE", ""),
		Caller:  rc.GetBool("CALLER", false),
	}
}

// New builds a logger from opt without touching the root
func New(opt Options) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	c := zerolog.New(w).Level(lvl).With().Timestamp()
	if opt.Service != "" {
		c = c.Str("service", opt.Service)
	}
	if opt.Caller {
		c = c.Caller()
	}
	return c.Logger()
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init installs the root logger. Only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, initializing it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child of the root tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type runKey struct{}

// WithRun tags ctx with the id of a resolve run
func WithRun(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey{}, runID)
}

// C returns a child of the root carrying the request id, subject and run id found on ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if id := pnet.RequestID(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	if s := pnet.Subject(ctx); s != "" {
		c = c.Str("subject", s)
	}
	if id, _ := ctx.Value(runKey{}).(string); id != "" {
		c = c.Str("run_id", id)
	}
	l := c.Logger()
	return &l
}
