// Package httpkit is what modules use to declare routes. It keeps modules off
// the platform http and middleware packages
package httpkit

import (
	"net/http"
	"strings"

	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/net/middleware"
)

type (
	// Router is the platform router seam
	Router = phttp.Router

	// Envelope is the JSON body of every answer
	Envelope = phttp.Envelope

	// AuthPort authenticates requests for Protected
	AuthPort = middleware.AuthPort

	// TokenFunc checks one bearer token
	TokenFunc = middleware.TokenFunc
)

// Get mounts a body-less handler; its result is wrapped in an Envelope
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Call(h))
}

// PostJSON mounts a handler for a JSON body decoded and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONBody(0, h))
}

// Bearer builds an AuthPort over the Authorization header
func Bearer(check TokenFunc) AuthPort { return middleware.Bearer(check) }

// Protected mounts fn's routes behind p. A nil p mounts them open
func Protected(r Router, p AuthPort, fn func(Router)) {
	if p == nil {
		fn(r)
		return
	}
	r.Group(func(g Router) {
		g.Use(middleware.Auth(p))
		fn(g)
	})
}

// MountAPI mounts fn under /api/{version} behind mw
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, fn func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		fn(api)
	})
}

// MountAPIV1 is MountAPI for v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, fn func(Router)) {
	MountAPI(r, "v1", mw, fn)
}
