package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/compose"
	"github.com/meridian-erp/meridian-front/internal/dashboard"
	"github.com/meridian-erp/meridian-front/internal/session"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *session.Manager
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	ComposeHandler   *compose.Handler
	DashboardHandler *dashboard.Handler
}

// NewRouter constructs the chi.Router with front-end defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(LoginRateLimit())
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
		r.Route("/compose", params.ComposeHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	return r
}
