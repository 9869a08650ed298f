package middleware

import (
	"net/http"
	"time"

	"enscheck/internal/platform/logger"
	pnet "enscheck/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog writes one zerolog line per request. Requests slower than slow
// log at warn and 5xx answers at error; slow 0 disables the warn level
func AccessLog(slow time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			took := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case slow > 0 && took >= slow:
				evt = log.Warn()
			}
			evt.Str("request_id", pnet.RequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", took).
				Msg("request done")
		})
	}
}
