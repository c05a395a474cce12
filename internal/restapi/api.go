// Package restapi exposes the query gateway: thin handlers that validate
// path parameters, call into the dataset, and encode GeoJSON. Handlers
// never retry and never cache; each request observes one immutable dataset
// snapshot.
package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"fleetpulse.opentransit.org/internal/app"
	"fleetpulse.opentransit.org/internal/appconf"
)

// RestAPI wires the HTTP surface to the application dependencies.
type RestAPI struct {
	*app.Application

	rateLimiter *RateLimitMiddleware
}

// New creates the API and its middleware state.
func New(application *app.Application) *RestAPI {
	api := &RestAPI{Application: application}
	if application.Config.RateLimitRPS > 0 {
		api.rateLimiter = NewRateLimitMiddleware(application.Config.RateLimitRPS, application.Clock)
	}
	return api
}

// Handler returns the fully assembled HTTP handler: routes wrapped in the
// middleware chain (request ID → logging → metrics → rate limit → gzip).
func (api *RestAPI) Handler() http.Handler {
	mux := http.NewServeMux()
	api.SetRoutes(mux)

	var handler http.Handler = mux
	handler = gzhttp.GzipHandler(handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}
	handler = MetricsHandler(api.Metrics)(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = RequestIDMiddleware(handler)

	return handler
}

// SetRoutes registers every endpoint on the mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", api.healthHandler)
	mux.Handle("GET /metrics", api.metricsHandler())

	mux.HandleFunc("GET /shapes", api.shapesHandler)
	mux.HandleFunc("GET /shapes/{id}", api.shapeHandler)
	mux.HandleFunc("GET /stops", api.stopsHandler)
	mux.HandleFunc("GET /stops/nearby", api.stopsNearbyHandler)
	mux.HandleFunc("GET /stops/{id}", api.stopHandler)
	mux.HandleFunc("GET /routes", api.routesHandler)
	mux.HandleFunc("GET /routes/{id}", api.routeHandler)
	mux.HandleFunc("GET /trips", api.tripsHandler)
	mux.HandleFunc("GET /trips/{id}", api.tripHandler)

	mux.HandleFunc("GET /services/on/{date}", api.servicesOnHandler)
	mux.HandleFunc("GET /trips/on/{date}", api.tripsOnHandler)
	mux.HandleFunc("GET /vehicles/at/{datetime}", api.vehiclesAtHandler)

	if api.Config.Env == appconf.Development {
		mux.HandleFunc("GET /debug/dataset", api.debugDatasetHandler)
	}
}
