// Package swaggerkit serves the OpenAPI document and Swagger UI
package swaggerkit

import (
	"net/http"

	phttp "enscheck/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocPath is where the OpenAPI JSON is served
const DocPath = "/api/docs/doc.json"

// Mount serves the UI under /api/docs/ when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/api/docs/", http.StatusMovedPermanently)
	})
	r.Get(DocPath, serveDocJSON())
	r.Handle("/api/docs/*", httpSwagger.Handler(httpSwagger.URL(DocPath)))
}
