// Package middleware holds the request middlewares of the API server.
// chi and go-chi/cors types stay inside this package
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Middleware is the shape every constructor here returns
type Middleware = func(http.Handler) http.Handler

// RequestID reuses an incoming X-Request-Id or mints one
func RequestID() Middleware { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

// NoCache marks every response uncacheable
func NoCache() Middleware { return chimw.NoCache }

// StripSlashes drops a trailing slash before routing
func StripSlashes() Middleware { return chimw.StripSlashes }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// Compress gzips JSON responses at level
func Compress(level int) Middleware {
	return chimw.Compress(level, "application/json", "text/plain")
}

// Timeout cancels the request context after d. 0 disables it
func Timeout(d time.Duration) Middleware {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.Timeout(d)
}

// Throttle caps in flight requests; the rest wait up to wait for a slot.
// limit 0 disables it
func Throttle(limit int, wait time.Duration) Middleware {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.ThrottleBacklog(limit, limit*4, wait)
}

// CORS allows origins to call the API with a bearer token.
// No origins disables cross origin access
func CORS(origins []string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
