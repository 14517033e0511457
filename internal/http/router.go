// Package httpapi assembles the public HTTP surface: middleware chain, the
// /api routes of every module, health and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gamelib/internal/platform/metrics"
	"gamelib/internal/platform/middleware"
	"gamelib/pkg/platform/httputil"
	"gamelib/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by every module handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the pieces NewRouter wires together.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	CORSOrigins    []string
	Handlers       []RouteRegistrar
	Health         map[string]HealthCheck
	MetricsHandler http.Handler
	// Clock overrides the request time source; nil means time.Now.
	Clock func() time.Time
}

// NewRouter builds the root handler.
func NewRouter(d Deps) http.Handler {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger, d.Metrics))
	r.Use(middleware.RequestID)
	r.Use(requesttime.WithClock(clock))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(d.CORSOrigins))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	r.Get("/healthz", healthHandler(d.Health, d.Logger))
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(chimw.Timeout(timeout))
		api.Use(middleware.ContentTypeJSON)
		for _, h := range d.Handlers {
			h.Register(api)
		}
	})

	return otelhttp.NewHandler(r, "gamelib-http")
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"request_id", middleware.GetRequestID(ctx),
					"dependency", name,
					"error", err,
				)
				status = http.StatusServiceUnavailable
				body["status"] = "unavailable"
				body[name] = "down"
				continue
			}
			body[name] = "up"
		}
		httputil.WriteJSON(w, status, body)
	}
}
