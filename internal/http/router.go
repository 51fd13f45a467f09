// Package httpapi assembles the HTTP surface: middleware chain, public
// health and metrics endpoints, and the authenticated attendance API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	checkinhandler "ponto/internal/checkin/handler"
	compliancehandler "ponto/internal/compliance/handler"
	geofencehandler "ponto/internal/geofence/handler"
	"ponto/internal/platform/metrics"
	"ponto/internal/ratelimit"
	"ponto/pkg/platform/middleware/auth"
	"ponto/pkg/platform/middleware/metadata"
	"ponto/pkg/platform/middleware/requestid"
	"ponto/pkg/platform/middleware/requesttime"
)

// Deps carries the constructed handlers and cross-cutting dependencies the
// router mounts.
type Deps struct {
	Checkins   *checkinhandler.Handler
	Compliance *compliancehandler.Handler
	Geofence   *geofencehandler.Handler

	TokenValidator auth.JWTValidator
	Logger         *slog.Logger
	HealthCheck    func() error

	// HTTPMetrics and SubmitLimiter are optional; nil disables them.
	HTTPMetrics   *metrics.HTTP
	SubmitLimiter ratelimit.Limiter
}

// NewRouter wires all endpoints behind the shared middleware chain. Every
// attendance route requires a valid staff token; health and metrics stay
// public for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps.HealthCheck))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.TokenValidator, deps.Logger))
		if deps.SubmitLimiter != nil {
			r.Use(ratelimit.Middleware(deps.SubmitLimiter, deps.Logger))
		}
		deps.Checkins.Register(r)
		deps.Compliance.Register(r)
		deps.Geofence.Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
