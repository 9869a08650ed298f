package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"enscheck/internal/services/api/docs"
)

// docReader is swapped in tests
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the OpenAPI 3.0 document with the error envelope filled in
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/api/v1")
		addErrorEnvelope(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// normalize pins the document to OAS 3.0.3, which the UI renders, and sets a server url
func normalize(spec map[string]any, server string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": server}}
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// addErrorEnvelope declares the error body and gives every operation a 500 that uses it
func addErrorEnvelope(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorEnvelope"]; !ok {
		str := map[string]any{"type": "string"}
		schemas["ErrorEnvelope"] = map[string]any{
			"type":     "object",
			"required": []any{"status_code", "status"},
			"properties": map[string]any{
				"status_code": map[string]any{"type": "integer"},
				"status":      str,
				"code":        map[string]any{"type": "string", "example": "unavailable"},
				"error":       str,
				"field":       str,
				"request_id":  str,
			},
		}
	}
	internal := map[string]any{
		"description": "Internal Server Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorEnvelope"},
			},
		},
	}
	for _, p := range child(spec, "paths") {
		ops, _ := p.(map[string]any)
		for _, op := range ops {
			o, ok := op.(map[string]any)
			if !ok {
				continue
			}
			resps := child(o, "responses")
			if _, ok := resps["500"]; !ok {
				resps["500"] = internal
			}
		}
	}
}
