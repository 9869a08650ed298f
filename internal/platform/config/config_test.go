package config

import (
	"testing"
	"time"

	kit "enscheck/internal/platform/testkit"
)

func TestPrefix_Concatenates(t *testing.T) {
	c := New().Prefix("CORE_").Prefix("RESOLVE_")
	if got := c.Key("BATCH_SIZE"); got != "CORE_RESOLVE_BATCH_SIZE" {
		t.Fatalf("Key = %q", got)
	}
	t.Setenv("CORE_RESOLVE_TLD", "  eth  ")
	if got := c.MayString("TLD", "x"); got != "eth" {
		t.Fatalf("MayString trims: %q", got)
	}
	if got := c.MayString("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("MayString default = %q", got)
	}
}

func TestMay_TypedValues(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_INT", "250")
	t.Setenv("T_BOOL", "true")
	t.Setenv("T_DUR", "1500ms")

	if got := c.MayInt("INT", 100); got != 250 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayBool("BOOL", false); !got {
		t.Fatal("MayBool = false")
	}
	if got := c.MayDuration("DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
}

func TestMay_InvalidFallsBack(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_INT", "lots")
	t.Setenv("T_BOOL", "maybe")
	t.Setenv("T_DUR", "soon")

	if got := c.MayInt("INT", 100); got != 100 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayBool("BOOL", true); !got {
		t.Fatal("MayBool should keep default")
	}
	if got := c.MayDuration("DUR", time.Second); got != time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")

	if got := c.MayEnum("SCHEME", "labelhash", "labelhash", "namehash"); got != "labelhash" {
		t.Fatalf("default = %q", got)
	}

	t.Setenv("E_SCHEME", "NameHash")
	if got := c.MayEnum("SCHEME", "labelhash", "labelhash", "namehash"); got != "namehash" {
		t.Fatalf("case folded = %q", got)
	}

	if got := c.MayEnum("UNSET", "", "a", "b"); got != "" {
		t.Fatalf("empty default = %q", got)
	}

	t.Setenv("E_FORMAT", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("FORMAT", "text", "text", "json") })
}
