package middleware

import (
	"net/http"
	"strings"

	perr "enscheck/internal/platform/errors"
	phttp "enscheck/internal/platform/net/http"
	pnet "enscheck/internal/platform/net"
)

// AuthPort authenticates a request and names the caller
type AuthPort interface {
	Authenticate(r *http.Request) (subject string, err error)
}

// TokenFunc checks a bearer token and returns the caller it belongs to
type TokenFunc func(token string) (subject string, err error)

type bearer struct{ check TokenFunc }

// Bearer reads "Authorization: Bearer <token>" and hands the token to check
func Bearer(check TokenFunc) AuthPort { return bearer{check: check} }

func (b bearer) Authenticate(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	subject, err := b.check(token)
	if err != nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return subject, nil
}

// Auth rejects requests p cannot authenticate with a 401 envelope.
// A nil port lets everything through
func Auth(p AuthPort) Middleware {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := p.Authenticate(r)
			if err != nil {
				if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
					err = perr.Wrap(err, perr.ErrorCodeUnauthorized, "unauthorized")
				}
				phttp.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithSubject(r.Context(), subject)))
		})
	}
}
