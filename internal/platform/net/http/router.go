// Package http is the transport seam every module mounts against.
// Modules see Router and Handler; chi stays behind AdaptChi
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is a plain handler func
type Handler = http.HandlerFunc

// Router is the routing surface modules are given
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(prefix string, fn func(Router))
	Mux() http.Handler
}

type chiRouter struct{ r chi.Router }

// AdaptChi wraps a chi router, typically a *chi.Mux
func AdaptChi(r chi.Router) Router { return chiRouter{r: r} }

// NewRouter returns a Router over a fresh chi mux
func NewRouter() Router { return AdaptChi(chi.NewRouter()) }

func (c chiRouter) Get(p string, h Handler)  { c.r.Method(http.MethodGet, p, h) }
func (c chiRouter) Post(p string, h Handler) { c.r.Method(http.MethodPost, p, h) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(prefix string, fn func(Router)) {
	c.r.Route(prefix, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Mux() http.Handler { return c.r }
