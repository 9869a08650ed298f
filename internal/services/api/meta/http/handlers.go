// Package http serves the meta endpoints: liveness, readiness, build and service info
package http

import (
	"context"
	"net/http"
	"time"

	"enscheck/internal/core/version"
	"enscheck/internal/modkit/httpkit"
)

// Pinger is a backend readiness can check
type Pinger interface {
	Ping(context.Context) error
}

// Check names one readiness dependency. A nil Pinger is reported as skipped
type Check struct {
	Name   string
	Pinger Pinger
}

// ResolverInfo is the resolver configuration shown by /service
type ResolverInfo struct {
	Registry  string `json:"registry"   example:"https://api.thegraph.com/subgraphs/name/ensdomains/ens"`
	Scheme    string `json:"scheme"     example:"labelhash"`
	TLD       string `json:"tld"        example:"eth"`
	BatchSize int    `json:"batch_size" example:"100"`
	Delay     string `json:"delay"      example:"1s"`
	Strict    bool   `json:"strict"     example:"false"`
	MaxNames  int    `json:"max_names"  example:"500"`
}

// Deps are the handler dependencies
type Deps struct {
	Service      string
	StartedAt    time.Time
	Checks       []Check
	ReadyTimeout time.Duration                // per request; 0 means 2s
	Resolver     func() (ResolverInfo, bool) // nil or false omits the resolver block
}

type handlers struct{ d Deps }

// Register mounts /health, /ready, /version and /service
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{d: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the liveness payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"enscheck-api"`
	Now     string `json:"now"     example:"2026-01-03T13:05:00Z"`
}

// ReadyCheck is the outcome of one Check
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"` // ok, fail or skipped
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is ok unless a configured backend failed
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
}

// ServiceResponse describes the running process
type ServiceResponse struct {
	Name     string        `json:"name"     example:"enscheck-api"`
	Started  string        `json:"started"  example:"2026-01-03T13:00:00Z"`
	Uptime   int64         `json:"uptime"   example:"300"`
	Resolver *ResolverInfo `json:"resolver,omitempty"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.d.Service, Now: time.Now().UTC().Format(time.RFC3339)}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness of the configured stores
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.d.ReadyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(h.d.Checks))}
	for _, c := range h.d.Checks {
		rc := ReadyCheck{Name: c.Name, Status: "skipped"}
		if c.Pinger != nil {
			rc.Status = "ok"
			if err := c.Pinger.Ping(ctx); err != nil {
				rc.Status, rc.Error = "fail", err.Error()
				out.Status = "fail"
			}
		}
		out.Checks = append(out.Checks, rc)
	}
	return out, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) { return version.Info(), nil }

// swagger:route GET /meta/service Meta metaService
// @Summary Uptime and resolver settings
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.d.Service,
		Started: h.d.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.d.StartedAt) / time.Second),
	}
	if h.d.Resolver != nil {
		if info, ok := h.d.Resolver(); ok {
			out.Resolver = &info
		}
	}
	return out, nil
}
