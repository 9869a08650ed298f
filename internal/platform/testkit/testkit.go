// Package testkit holds the small assertions shared by package tests
package testkit

import (
	"fmt"
	"strings"
	"testing"
)

// maxShown caps how much of a haystack a failure prints
const maxShown = 2048

// MustPanic fails unless fn panics and returns the recovered value
func MustPanic(t testing.TB, fn func()) (v any) {
	t.Helper()
	defer func() {
		v = recover()
		if v == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
	return nil
}

// MustPanicWith is MustPanic that also checks the panic text contains sub
func MustPanicWith(t testing.TB, sub string, fn func()) {
	t.Helper()
	v := MustPanic(t, fn)
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	MustContain(t, fmt.Sprint(v), sub)
}

// MustNotPanic fails if fn panics
func MustNotPanic(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("unexpected panic: %v", v)
		}
	}()
	fn()
}

// MustContain fails unless s contains sub
func MustContain(t testing.TB, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("missing %q in:\n%s", sub, clip(s))
	}
}

// MustNotContain fails if s contains sub
func MustNotContain(t testing.TB, s, sub string) {
	t.Helper()
	if strings.Contains(s, sub) {
		t.Fatalf("unexpected %q in:\n%s", sub, clip(s))
	}
}

func clip(s string) string {
	if len(s) <= maxShown {
		return s
	}
	return s[:maxShown] + fmt.Sprintf("... (%d more bytes)", len(s)-maxShown)
}
