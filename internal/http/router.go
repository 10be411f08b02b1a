// Package httpapi assembles the casevault HTTP surface: global middleware,
// the public login and registration routes, the authenticated user routes
// and the admin-only routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casevault/internal/platform/metrics"
	"casevault/pkg/platform/httputil"
	adminmw "casevault/pkg/platform/middleware/admin"
	authmw "casevault/pkg/platform/middleware/auth"
	"casevault/pkg/platform/middleware/metadata"
	request "casevault/pkg/platform/middleware/request"
	"casevault/pkg/platform/middleware/requesttime"
)

// PublicRoutes registers routes reachable without a token.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// Routes registers routes for any authenticated caller.
type Routes interface {
	Register(r chi.Router)
}

// AdminRoutes registers routes restricted to the admin role.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Tokens        authmw.JWTValidator
	Revocation    authmw.TokenRevocationChecker
	Policy        adminmw.Enforcer
	CORSOrigins   []string
	AuthRateLimit int

	Public []PublicRoutes
	Routes []Routes
	Admin  []AdminRoutes
	Health map[string]HealthCheck
}

func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recovery(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.AuthRateLimit, time.Minute))
		}
		for _, h := range cfg.Public {
			h.RegisterPublic(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Tokens, cfg.Revocation, cfg.Logger))
		r.Use(adminmw.RequirePolicy(cfg.Policy, cfg.Logger))
		for _, h := range cfg.Routes {
			h.Register(r)
		}
		for _, h := range cfg.Admin {
			h.RegisterAdmin(r)
		}
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
