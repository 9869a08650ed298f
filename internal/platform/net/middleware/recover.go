package middleware

import (
	"net/http"
	"runtime/debug"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/logger"
	phttp "enscheck/internal/platform/net/http"
	pnet "enscheck/internal/platform/net"
)

// RecoverJSON turns a handler panic into a 500 envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("request_id", pnet.RequestID(r.Context())).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			phttp.WriteError(w, r, perr.PanicErrf("panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
