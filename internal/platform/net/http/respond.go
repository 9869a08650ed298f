package http

import (
	"encoding/json"
	"net/http"

	perr "enscheck/internal/platform/errors"
	pnet "enscheck/internal/platform/net"
)

// Envelope wraps every JSON body the API writes
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	Field      string `json:"field,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// JSON writes v with status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope
func WriteData(w http.ResponseWriter, r *http.Request, status int, data any) {
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
		Data:       data,
	})
}

// WriteError maps err to a status and writes an error envelope
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := perr.HTTPStatus(err)
	wire := perr.WireFrom(err)
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       wire.Code.String(),
		Error:      wire.Message,
		Field:      wire.Field,
		RequestID:  pnet.RequestID(r.Context()),
	})
}

// Response is what return style handlers produce
type Response struct {
	Status int
	Body   any
	Err    error
}

// OK is a 200 with data
func OK(data any) Response { return Response{Status: http.StatusOK, Body: data} }

// Error is an error response; the status comes from the error code
func Error(err error) Response { return Response{Err: err} }

// Handle adapts a return style handler
func Handle(fn func(*http.Request) Response) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		if resp.Err != nil {
			WriteError(w, r, resp.Err)
			return
		}
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		WriteData(w, r, status, resp.Body)
	}
}
