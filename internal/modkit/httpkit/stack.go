package httpkit

import (
	"compress/flate"
	"net/http"
	"strings"
	"time"

	"enscheck/internal/platform/config"
	"enscheck/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Origins     []string      // CORS origins; empty disables cross origin calls
	Timeout     time.Duration // request deadline; 0 disables it
	SlowRequest time.Duration // access log warns at or above this
	MaxInFlight int           // concurrent requests; 0 is unlimited
}

// StackFromConfig reads CORS_ORIGINS, REQUEST_TIMEOUT, SLOW_REQUEST and MAX_IN_FLIGHT
func StackFromConfig(cfg config.Conf) StackOptions {
	var origins []string
	for _, o := range strings.Split(cfg.MayString("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return StackOptions{
		Origins:     origins,
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 2*time.Minute),
		SlowRequest: cfg.MayDuration("SLOW_REQUEST", 2*time.Second),
		MaxInFlight: cfg.MayInt("MAX_IN_FLIGHT", 0),
	}
}

// CommonStack is the middleware every versioned API route runs behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.SlowRequest),
		middleware.RecoverJSON,
		middleware.CORS(o.Origins),
		middleware.NoCache(),
		middleware.StripSlashes(),
		middleware.Throttle(o.MaxInFlight, o.Timeout),
		middleware.Timeout(o.Timeout),
		middleware.Compress(flate.BestSpeed),
	}
}
