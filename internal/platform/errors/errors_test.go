package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{ErrorCode(999), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.code.String(), func(t *testing.T) {
			if got := HTTPStatusCode(tc.code); got != tc.want {
				t.Fatalf("HTTPStatusCode(%v) = %d, want %d", tc.code, got, tc.want)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	if ErrorCodeUnavailable.String() != "unavailable" || ErrorCodeTooManyRequests.String() != "too_many_requests" {
		t.Fatal("unexpected names")
	}
	if got := ErrorCode(999).String(); got != "code_999" {
		t.Fatalf("out of range = %q", got)
	}
	for c := range codeNames {
		if codeNames[c] == "" {
			t.Fatalf("code %d has no name", c)
		}
	}
}

func TestWrap_ChainAndCode(t *testing.T) {
	cause := stderrs.New("connection reset")
	err := Wrapf(cause, ErrorCodeUnavailable, "ens do failed for %d ids", 100)

	if err.Error() != "ens do failed for 100 ids: connection reset" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !stderrs.Is(err, cause) || Root(err) != cause {
		t.Fatal("cause lost")
	}

	outer := fmt.Errorf("batch 2: %w", err)
	if !IsCode(outer, ErrorCodeUnavailable) || HTTPStatus(outer) != http.StatusServiceUnavailable {
		t.Fatalf("code through fmt wrap = %v", CodeOf(outer))
	}
	if CodeOf(cause) != ErrorCodeUnknown || CodeOf(nil) != ErrorCodeUnknown {
		t.Fatal("foreign errors are unknown")
	}

	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatal("WrapIf(nil) must be nil")
	}
	if !IsCode(WrapIf(cause, ErrorCodeDB, "x"), ErrorCodeDB) {
		t.Fatal("WrapIf lost the code")
	}
}

func TestWithField_CopyOnWrite(t *testing.T) {
	base := New(ErrorCodeValidation, "names is required")
	withField := WithField(base, "names")

	if e, _ := As(base); e.Field() != "" {
		t.Fatal("original mutated")
	}
	e, ok := As(withField)
	if !ok || e.Field() != "names" || e.Code() != ErrorCodeValidation {
		t.Fatalf("with field = %+v", e)
	}

	foreign := stderrs.New("plain")
	if WithField(foreign, "x") != foreign {
		t.Fatal("foreign error should pass through")
	}
}

func TestWireFrom(t *testing.T) {
	if (WireFrom(nil) != Wire{}) {
		t.Fatal("nil should give zero wire")
	}
	w := WireFrom(WithField(JSONErrf("invalid JSON: %s", "eof"), "body"))
	if w.Code != ErrorCodeJSON || w.Message != "invalid JSON: eof" || w.Field != "body" {
		t.Fatalf("wire = %+v", w)
	}
	w = WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
}

func TestSugar(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{JSONErrf("x"), ErrorCodeJSON},
		{PanicErrf("x"), ErrorCodePanic},
		{Unauthorizedf("x"), ErrorCodeUnauthorized},
		{Unavailablef("x"), ErrorCodeUnavailable},
		{InvalidArgf("x"), ErrorCodeInvalidArgument},
	}
	for _, tc := range tests {
		if !IsCode(tc.err, tc.code) {
			t.Fatalf("%v: code = %v, want %v", tc.err, CodeOf(tc.err), tc.code)
		}
	}
}
