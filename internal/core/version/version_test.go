package version

import (
	"testing"

	"enscheck/internal/platform/testkit"
)

func TestInfo_Stamped(t *testing.T) {
	testkit.Swap(t, &version, "v1.2.3")
	testkit.Swap(t, &commit, "abcd")
	testkit.Swap(t, &date, "2026-01-03")

	want := BuildInfo{Service: "enscheck", Version: "v1.2.3", Commit: "abcd", Date: "2026-01-03"}
	if got := Info(); got != want {
		t.Fatalf("Info = %+v", got)
	}
}

func TestInfo_Unstamped(t *testing.T) {
	testkit.Swap(t, &commit, "")
	testkit.Swap(t, &date, "")
	got := Info()
	if got.Commit == "" || got.Date == "" {
		t.Fatalf("fallbacks missing: %+v", got)
	}
}

func TestOr(t *testing.T) {
	if or("", "b", "c") != "b" || or("", "") != "" {
		t.Fatal("or picked wrong value")
	}
}
