package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "enscheck/internal/platform/errors"
	pnet "enscheck/internal/platform/net"
)

type hashOut struct {
	Name     string `json:"name"`
	NameHash string `json:"namehash"`
}

type namesIn struct {
	Names []string `json:"names" validate:"required,min=1"`
}

func do(t *testing.T, h Handler, req *http.Request, data any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()
	h(rec, req)
	env := Envelope{Data: data}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, env
}

func TestCall_SuccessEnvelope(t *testing.T) {
	h := Call(func(*http.Request) (any, error) {
		return hashOut{Name: "foo", NameHash: "0xde9b"}, nil
	})
	var out hashOut
	rec, env := do(t, h, httptest.NewRequest(http.MethodGet, "/hash/foo", nil), &out)

	if rec.Code != http.StatusOK || env.StatusCode != http.StatusOK || env.Status != "OK" {
		t.Fatalf("status = %d env=%+v", rec.Code, env)
	}
	if env.RequestID != "req-1" || out.NameHash != "0xde9b" {
		t.Fatalf("env = %+v out = %+v", env, out)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestCall_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{perr.WithField(perr.New(perr.ErrorCodeValidation, "name is empty"), "name"), http.StatusBadRequest, "validation"},
		{perr.Unauthorizedf("invalid bearer token"), http.StatusUnauthorized, "unauthorized"},
		{perr.New(perr.ErrorCodeTooManyRequests, "slow down"), http.StatusTooManyRequests, "too_many_requests"},
		{errors.New("boom"), http.StatusInternalServerError, "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			h := Call(func(*http.Request) (any, error) { return nil, tc.err })
			rec, env := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), nil)
			if rec.Code != tc.status || env.StatusCode != tc.status || env.Code != tc.code {
				t.Fatalf("status = %d env = %+v", rec.Code, env)
			}
			if env.RequestID != "req-1" || env.Data != nil {
				t.Fatalf("env = %+v", env)
			}
		})
	}

	h := Call(func(*http.Request) (any, error) {
		return nil, perr.WithField(perr.New(perr.ErrorCodeValidation, "bad"), "names[0]")
	})
	_, env := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if env.Field != "names[0]" {
		t.Fatalf("field = %q", env.Field)
	}
}

func TestCall_PassesResponseThrough(t *testing.T) {
	h := Call(func(*http.Request) (any, error) {
		return Response{Status: http.StatusAccepted, Body: "queued"}, nil
	})
	var out string
	rec, _ := do(t, h, httptest.NewRequest(http.MethodPost, "/", nil), &out)
	if rec.Code != http.StatusAccepted || out != "queued" {
		t.Fatalf("status = %d out = %q", rec.Code, out)
	}
}

func TestJSONBody(t *testing.T) {
	var seen namesIn
	h := JSONBody(0, func(_ *http.Request, in namesIn) (any, error) {
		seen = in
		return len(in.Names), nil
	})

	var n int
	rec, _ := do(t, h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"names":["a","b"]}`)), &n)
	if rec.Code != http.StatusOK || n != 2 || len(seen.Names) != 2 {
		t.Fatalf("status = %d n = %d seen = %+v", rec.Code, n, seen)
	}

	rec, env := do(t, h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"names":[]}`)), nil)
	if rec.Code != http.StatusBadRequest || env.Code != "validation" {
		t.Fatalf("status = %d env = %+v", rec.Code, env)
	}

	rec, env = do(t, h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`)), nil)
	if rec.Code != http.StatusBadRequest || env.Code != "json" {
		t.Fatalf("status = %d env = %+v", rec.Code, env)
	}
}
