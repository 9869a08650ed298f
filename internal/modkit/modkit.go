// Package modkit is the contract between the API server and its modules
package modkit

import (
	"net/http"
	"strings"

	"enscheck/internal/modkit/repokit"
	"enscheck/internal/platform/config"
	"enscheck/internal/platform/logger"
	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/store"
)

// Module is a named route tree plus the ports it offers other modules
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	Ports() any
}

// Deps are handed to every module constructor. PG and CH are nil when not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// DepsFrom collects deps from an opened store, which may be nil
func DepsFrom(cfg config.Conf, st *store.Store, log *logger.Logger) Deps {
	d := Deps{Cfg: cfg}
	if log == nil {
		log = logger.Get()
	}
	d.Log = *log
	if st != nil {
		d.PG, d.CH = st.PG, st.CH
	}
	return d
}

// Option adjusts a module's Base
type Option func(*Base)

// WithName overrides the module name
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithPrefix overrides the route prefix
func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares adds middleware in front of the module's routes
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mws = append(b.mws, mw...) }
}

// Base implements the routing half of Module. Modules embed it and add Ports
type Base struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(phttp.Router)
}

// NewBase builds a Base whose routes are added by register. Later options win
func NewBase(register func(phttp.Router), opts ...Option) Base {
	b := Base{register: register}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Name returns the module name
func (b Base) Name() string { return b.name }

// Prefix returns the route prefix with one leading slash
func (b Base) Prefix() string { return "/" + strings.Trim(b.prefix, "/") }

// Middlewares returns the module middleware in order
func (b Base) Middlewares() []func(http.Handler) http.Handler { return b.mws }

// MountRoutes mounts the module under Prefix on r
func (b Base) MountRoutes(r phttp.Router) {
	r.Route(b.Prefix(), func(rr phttp.Router) {
		if len(b.mws) > 0 {
			rr.Use(b.mws...)
		}
		if b.register != nil {
			b.register(rr)
		}
	})
}
