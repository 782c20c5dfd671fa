package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// NewRouter wires the read-only bundle endpoints and health checks.
func NewRouter(bundles *BundleHandler, health *HealthHandler, allowedOrigins []string) http.Handler {
	standard := alice.New(recoverPanic, logRequest, secureHeaders, makeResponseJSON)

	r := mux.NewRouter()
	r.Handle("/healthz", standard.ThenFunc(health.Check)).Methods(http.MethodGet)

	r.Handle("/api/v1/bundles/{id:[0-9]+}/availability", standard.ThenFunc(bundles.Availability)).Methods(http.MethodGet)
	r.Handle("/api/v1/bundles/{id:[0-9]+}/quote", standard.ThenFunc(bundles.Quote)).Methods(http.MethodGet)

	r.NotFoundHandler = standard.ThenFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
