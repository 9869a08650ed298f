package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"enscheck/internal/modkit/module"
	"enscheck/internal/platform/config"
	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/testkit"
	metahttp "enscheck/internal/services/api/meta/http"
	resolvemod "enscheck/internal/services/resolve/module"
)

func mounted(t *testing.T, opt Options) http.Handler {
	t.Helper()
	t.Cleanup(module.Reset)
	r := phttp.NewRouter()
	Mount(r, opt)
	return r.Mux()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMount_RoutesAndPorts(t *testing.T) {
	t.Setenv("CORE_API_SWAGGER", "false")
	h := mounted(t, OptionsFromConfig(config.New()))

	for _, path := range []string{
		"/healthz",
		"/api/v1/meta/health",
		"/api/v1/meta/ready",
		"/api/v1/meta/version",
		"/api/v1/resolve/hash/foo.eth",
		"/metrics",
	} {
		if rec := get(h, path); rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d body=%s", path, rec.Code, rec.Body.String())
		}
	}
	if rec := get(h, "/api/docs/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("docs should be off, got %d", rec.Code)
	}

	p, ok := module.PortsAs[resolvemod.Ports]("resolve")
	if !ok || p.Runner == nil {
		t.Fatalf("resolve ports not registered")
	}
	testkit.MustContain(t, get(h, "/metrics").Body.String(), "enscheck_lookup_duration_seconds")
}

func TestMount_ServiceShowsResolver(t *testing.T) {
	t.Setenv("CORE_RESOLVE_SCHEME", "namehash")
	t.Setenv("CORE_RESOLVE_BATCH_SIZE", "25")
	h := mounted(t, Options{Config: config.New()})

	rec := get(h, "/api/v1/meta/service")
	var out metahttp.ServiceResponse
	if err := json.NewDecoder(rec.Body).Decode(&phttp.Envelope{Data: &out}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Resolver == nil || out.Resolver.Scheme != "namehash" || out.Resolver.BatchSize != 25 {
		t.Fatalf("resolver = %+v", out.Resolver)
	}
}

func TestMount_ProfilerToggle(t *testing.T) {
	h := mounted(t, Options{Config: config.New(), EnableProfiler: true})
	if rec := get(h, "/debug/pprof/"); rec.Code != http.StatusOK {
		t.Fatalf("pprof = %d", rec.Code)
	}
}
