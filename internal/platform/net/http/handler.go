package http

import (
	"net/http"

	"enscheck/internal/platform/net/http/bind"
)

// Call adapts a handler without a request body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return result(fn(r)) })
}

// JSONBody adapts a handler that takes a decoded and validated T.
// maxBytes 0 means bind.DefaultMaxBytes
func JSONBody[T any](maxBytes int64, fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.JSON[T](r, maxBytes)
		if err != nil {
			return Error(err)
		}
		return result(fn(r, in))
	})
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}
