// Package httpx serves the loopback API that fronts the social auth orchestrator.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterServices holds everything the router wires into handlers.
type RouterServices struct {
	Auth      AuthService
	DeepLinks DeepLinkRouter
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter builds the API router with logging and panic recovery. It panics
// without an AuthService; deep-link routes are mounted only with a DeepLinkRouter.
func NewRouter(svcs RouterServices) http.Handler {
	if svcs.Auth == nil {
		panic("AuthService is required")
	}
	logger := svcs.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &AuthHandlers{Svc: svcs.Auth, DeepLinks: svcs.DeepLinks, Logger: logger.With("component", "http")}

	r := chi.NewRouter()
	r.Use(Recover(logger), Logging(logger))

	r.Get("/healthz", healthHandler(svcs.Auth.Providers))
	r.Head("/healthz", healthHandler(nil))
	if svcs.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svcs.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/providers", h.Providers)
		r.Get("/session", h.Session)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/{provider}/login", h.Login)
	})

	if svcs.DeepLinks != nil {
		r.Get("/oauth/{provider}/callback", h.Callback)
		r.Post("/oauth/{provider}/cancel", h.Cancel)
		r.Post("/deeplink", h.DeepLink)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, ErrorParams{Status: http.StatusNotFound, Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, ErrorParams{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED"})
	})
	return r
}
