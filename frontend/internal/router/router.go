package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	frontend_mw "github.com/quillpress/quill/frontend/internal/middleware"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/frontend/internal/setup"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/quillpress/quill/shared/middleware/metrics"
)

// SetupRouter creates the frontend router.
// Pages and script endpoints share the session, CSRF and optional auth
// middleware; POST endpoints are rate limited per session.
func SetupRouter(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "text/html", "text/css", "application/javascript", "application/json"))
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.SecureCookies, mw.DefaultCSP))
	// preflight requests never reach a route, so CORS sits on the root router
	if len(deps.Public.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Public.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
			ExposedHeaders:   []string{"X-Feed-Page", "X-Feed-Exhausted"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.HealthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticPath))))

	pageAuth := frontend_mw.NewAuth(deps.Auth, "/")

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware())
		r.Use(frontend_mw.GenerateCSRFToken(frontend_mw.CSRFConfig{SecureCookies: deps.Public.SecureCookies}))
		r.Use(frontend_mw.ValidateCSRFToken())
		r.Use(pageAuth.OptionalAuth())

		r.Get("/", h.IndexGetHandler)
		r.Get("/categories/{id}", h.CategoryGetHandler)
		r.Get("/authors/{id}", h.AuthorGetHandler)
		r.Get("/posts/{id}/view", h.PostViewHandler)

		r.Group(func(r chi.Router) {
			r.Use(pageAuth.NeedAuth())
			r.Get("/following", h.FollowingGetHandler)
			r.Get("/posts/new", h.PostNewHandler)
			r.Get("/posts/{id}/edit", h.PostEditHandler)
		})

		// Endpoints called by the page script
		r.Get("/feed/{list}/next", h.FeedNextHandler)
		r.Get("/flash", h.FlashGetHandler)
		r.Post("/flash/{id}/dismiss", h.FlashDismissHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(deps.FormLimiter, session.Identity))
			r.Post("/posts/{id}/favorite", h.FavoriteHandler)
			r.Post("/users/{id}/follow", h.FollowHandler)
			r.Post("/forms/submit", h.FormSubmitHandler)
		})
	})

	return r
}
