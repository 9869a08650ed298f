// Package api composes the HTTP API from its modules
package api

import (
	"enscheck/internal/platform/config"
	"enscheck/internal/platform/logger"
	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/net/middleware"
	"enscheck/internal/platform/store"

	"enscheck/internal/modkit"
	"enscheck/internal/modkit/httpkit"
	"enscheck/internal/modkit/module"
	"enscheck/internal/modkit/swaggerkit"

	metahttp "enscheck/internal/services/api/meta/http"
	metamod "enscheck/internal/services/api/meta/module"
	resolvemod "enscheck/internal/services/resolve/module"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the API options
type Options struct {
	Config         config.Conf // root config; modules apply their own prefixes
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// OptionsFromConfig reads the CORE_API_ toggles
func OptionsFromConfig(root config.Conf) Options {
	c := root.Prefix("CORE_API_")
	return Options{
		Config:         root,
		EnableSwagger:  c.MayBool("SWAGGER", true),
		EnableProfiler: c.MayBool("PROFILER", false),
		EnableMetrics:  c.MayBool("METRICS", true),
	}
}

// Mount mounts every module under /api/v1 plus the root level extras.
// r must not have routes yet
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.Heartbeat("/healthz"))

	deps := modkit.DepsFrom(opt.Config, opt.Store, opt.Logger)
	mods := []modkit.Module{
		metamod.New(deps, resolverInfo),
		resolvemod.New(deps),
	}

	stack := httpkit.CommonStack(httpkit.StackFromConfig(opt.Config.Prefix("CORE_API_")))
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
}

// resolverInfo reads the resolve module's settings from the registry at request time
func resolverInfo() (metahttp.ResolverInfo, bool) {
	p, ok := module.PortsAs[resolvemod.Ports]("resolve")
	if !ok || p.Wiring == nil {
		return metahttp.ResolverInfo{}, false
	}
	o := p.Wiring.Options
	return metahttp.ResolverInfo{
		Registry:  p.Wiring.Registry.URL(),
		Scheme:    o.Scheme,
		TLD:       o.TLD,
		BatchSize: o.BatchSize,
		Delay:     o.Delay.String(),
		Strict:    o.Strict,
		MaxNames:  o.MaxNames,
	}, true
}
