package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/habitforge/mfa-service/internal/identity"
	"github.com/habitforge/mfa-service/pkg/httpserver"
)

// RouterOptions carries the router's optional collaborators.
type RouterOptions struct {
	Logger       *slog.Logger
	Metrics      *Metrics
	HealthChecks []func(*http.Request) error
}

// NewRouter assembles the HTTP surface: the authenticated /v1/2fa action
// endpoint plus the operational /healthz and /metrics endpoints, which
// are deliberately outside the bearer gate.
func NewRouter(svc Service, provider identity.Provider, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/healthz", httpserver.HealthCheckHandler(log, opts.HealthChecks...))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(provider))
		r.Post("/v1/2fa", h.dispatch)
	})

	return r
}
