package testkit

import (
	"sync"
	"testing"
)

var serial sync.Mutex

// Swap replaces *target with v until the test ends
func Swap[T any](t testing.TB, target *T, v T) {
	t.Helper()
	prev := *target
	*target = v
	t.Cleanup(func() { *target = prev })
}

// Serial holds a process wide lock until the test ends.
// Tests that Swap package seams call it first
func Serial(t testing.TB) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
