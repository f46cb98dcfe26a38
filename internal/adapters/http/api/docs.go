package api

import (
	_ "embed"
	"net/http"
)

// OpenAPI contains the embedded OpenAPI YAML description of the routes.
//
//go:embed openapi.yaml
var OpenAPI []byte

// HandleOpenAPI handles GET /openapi.yaml.
func HandleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(OpenAPI)
}
