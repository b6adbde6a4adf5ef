package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chronicle-cms/chronicle/internal/auth"
	"github.com/chronicle-cms/chronicle/internal/categories"
	"github.com/chronicle-cms/chronicle/internal/keywords"
	"github.com/chronicle-cms/chronicle/internal/observability"
	"github.com/chronicle-cms/chronicle/internal/posts"
	"github.com/chronicle-cms/chronicle/internal/rbac"
	"github.com/chronicle-cms/chronicle/internal/roles"
	"github.com/chronicle-cms/chronicle/internal/shared"
	"github.com/chronicle-cms/chronicle/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	PostsHandler       *posts.Handler
	CategoriesHandler  *categories.Handler
	KeywordsHandler    *keywords.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Chronicle defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.PostsHandler != nil {
			r.Route("/posts", params.PostsHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.KeywordsHandler != nil {
			r.Route("/keywords", params.KeywordsHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
