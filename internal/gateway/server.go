package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux. Every GET path serves the status page.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/*", g.handleStatus())
	return r
}
