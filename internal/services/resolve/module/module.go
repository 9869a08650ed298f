// Package module wires the resolver into the API using modkit
package module

import (
	"crypto/subtle"

	"enscheck/internal/modkit"
	"enscheck/internal/modkit/httpkit"
	perr "enscheck/internal/platform/errors"
	phttp "enscheck/internal/platform/net/http"

	"enscheck/internal/services/resolve/domain"
	rhttp "enscheck/internal/services/resolve/http"
)

// Ports exposes the resolver to other modules and binaries
type Ports struct {
	Runner domain.RunnerPort
	Wiring *Wiring
}

// Module is the resolve API module
type Module struct {
	modkit.Base
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the resolve module from CORE_RESOLVE_* and CORE_ENS_* config.
// It panics on invalid options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	w, err := Wire(deps, FromConfig(deps.Cfg), nil)
	if err != nil {
		panic("resolve module: " + err.Error())
	}
	return NewWith(w, opts...)
}

// NewWith constructs the module around an already wired resolver stack
func NewWith(w *Wiring, opts ...modkit.Option) *Module {
	svc := newAPIService(w)
	auth := tokenPort(w.Options.APIToken)
	base := modkit.NewBase(func(r phttp.Router) { rhttp.Register(r, svc, auth) },
		append([]modkit.Option{modkit.WithName("resolve"), modkit.WithPrefix("/resolve")}, opts...)...)
	return &Module{Base: base, ports: Ports{Runner: w.Resolver, Wiring: w}}
}

// tokenPort accepts one static bearer token; nil when none is configured
func tokenPort(token string) httpkit.AuthPort {
	if token == "" {
		return nil
	}
	return httpkit.Bearer(func(got string) (string, error) {
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return "", perr.Unauthorizedf("invalid token")
		}
		return "api", nil
	})
}

// Ports returns Runner and Wiring
func (m *Module) Ports() any { return m.ports }
