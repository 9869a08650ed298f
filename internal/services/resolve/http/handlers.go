// Package http provides http transport for resolve
package http

import (
	"context"
	stdhttp "net/http"
	"net/url"

	"enscheck/internal/modkit/httpkit"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/services/resolve/domain"

	"github.com/go-chi/chi/v5"
)

// Service is what the handlers need from the resolve module
type Service interface {
	Hash(ctx context.Context, name string) (domain.HashOutput, error)
	ResolveNames(ctx context.Context, in domain.ResolveInput) (domain.ResolveOutput, error)
}

// Register mounts the resolve routes. With a non nil auth port both routes need a bearer token
func Register(r httpkit.Router, s Service, auth httpkit.AuthPort) {
	h := &handlers{svc: s}
	httpkit.Protected(r, auth, func(rr httpkit.Router) {
		httpkit.Get(rr, "/hash/{name}", h.hash)
		httpkit.PostJSON(rr, "/names", h.resolve)
	})
}

type handlers struct{ svc Service }

// swagger:route GET /resolve/hash/{name} Resolve resolveHash
// @Summary Label hash and namehash of a name
// @Tags Resolve
// @Produce json
// @Param name path string true "Name, with or without the TLD"
// @Success 200 {object} domain.HashOutput "ok"
// @Failure 400 {object} httpkit.Envelope "invalid name"
// @Router /resolve/hash/{name} [get]
func (h *handlers) hash(r *stdhttp.Request) (any, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "name: bad escape")
	}
	return h.svc.Hash(r.Context(), name)
}

// swagger:route POST /resolve/names Resolve resolveNames
// @Summary Classify names against the registry
// @Description Runs one synchronous resolve over the posted names. Batches are sent
// @Description with the configured delay between them, so large requests take a while.
// @Tags Resolve
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.ResolveInput true "Names"
// @Success 200 {object} domain.ResolveOutput "ok"
// @Failure 400 {object} httpkit.Envelope "invalid input"
// @Failure 401 {object} httpkit.Envelope "missing or invalid token"
// @Router /resolve/names [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.ResolveNames(r.Context(), in)
}
