// Package module mounts the meta endpoints
package module

import (
	"time"

	"enscheck/internal/core/version"
	"enscheck/internal/modkit"
	phttp "enscheck/internal/platform/net/http"

	metahttp "enscheck/internal/services/api/meta/http"
)

// Module is the meta API module; it has no ports
type Module struct {
	modkit.Base
}

// New mounts meta under /meta. resolver may be nil
func New(deps modkit.Deps, resolver func() (metahttp.ResolverInfo, bool), opts ...modkit.Option) modkit.Module {
	d := metahttp.Deps{
		Service:   version.Info().Service,
		StartedAt: time.Now(),
		Checks: []metahttp.Check{
			{Name: "pg", Pinger: pinger(deps.PG)},
			{Name: "ch", Pinger: pinger(deps.CH)},
		},
		ReadyTimeout: deps.Cfg.Prefix("CORE_API_").MayDuration("READY_TIMEOUT", 2*time.Second),
		Resolver:     resolver,
	}
	base := modkit.NewBase(func(r phttp.Router) { metahttp.Register(r, d) },
		append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	return &Module{Base: base}
}

// pinger keeps a nil store a nil Pinger
func pinger(v any) metahttp.Pinger {
	if p, ok := v.(metahttp.Pinger); ok && p != nil {
		return p
	}
	return nil
}

// Ports returns nil
func (m *Module) Ports() any { return nil }
