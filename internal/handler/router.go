package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/middleware"
	"github.com/infinai/infinai/internal/web"
)

// RouterConfig collects the handlers and middleware settings for NewRouter.
type RouterConfig struct {
	Logger *slog.Logger

	Pages     *PageHandler
	Projects  *ProjectsHandler
	Subscribe *SubscribeHandler
	Admin     *AdminHandler
	Health    *HealthHandler
	Metrics   *MetricsHandler

	Sessions  *auth.SessionVerifier
	AdminAuth middleware.AdminAuthConfig
	RateLimit middleware.RateLimitConfig
	Security  middleware.SecurityConfig
	CORS      middleware.CORSConfig

	// BasePath additionally mounts the asset routes under this prefix.
	BasePath string
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Session(cfg.Sessions, cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	mountAssets(r, "")
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		mountAssets(r, base)
	}
	r.Get("/background.svg", cfg.Pages.Background)

	r.Get("/", cfg.Pages.Home)
	r.Get("/projects", cfg.Pages.Projects)
	r.Get("/projects/{id}", cfg.Pages.Project)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))

		r.Get("/projects", cfg.Projects.List)
		r.Get("/projects/{id}", cfg.Projects.Get)

		r.With(middleware.RateLimitIP(cfg.RateLimit)).Post("/subscribe", cfg.Subscribe.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.AdminAuth))
			r.Post("/sync-users", cfg.Admin.SyncUsers)
			r.Get("/stats", cfg.Admin.Stats)
		})

		r.NotFound(APINotFound)
		r.MethodNotAllowed(MethodNotAllowed)
	})

	r.NotFound(cfg.Pages.NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}

func mountAssets(r chi.Router, base string) {
	static := web.StaticHandler()
	r.Handle(base+"/static/*", http.StripPrefix(base+"/static", static))
	if base == "" {
		r.Handle("/images/*", static)
		return
	}
	r.Handle(base+"/images/*", http.StripPrefix(base, static))
}
