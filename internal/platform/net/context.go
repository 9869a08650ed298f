// Package net holds request scoped values shared by the http layers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

var subjectKey ctxKey

// RequestID returns the id set by the RequestID middleware, or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithRequestID stores id where RequestID finds it
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// WithSubject records who authenticated the request
func WithSubject(ctx context.Context, subject string) context.Context {
	if subject == "" {
		return ctx
	}
	return context.WithValue(ctx, subjectKey, subject)
}

// Subject returns the authenticated caller, or ""
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}
