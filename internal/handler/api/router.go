// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/techblog/internal/middleware"
	"github.com/olegiv/techblog/internal/store"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 30 * time.Second

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	Store    store.Store
	Sessions *scs.SessionManager
	Logger   *slog.Logger

	IsDevelopment      bool
	CSRFKey            []byte
	CORSAllowedOrigins []string

	// LoginProtection and PublicLimiter are owned by the caller, which stops them.
	LoginProtection *middleware.LoginProtection
	PublicLimiter   *middleware.GlobalRateLimiter
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Store, cfg.Sessions, cfg.LoginProtection, cfg.Logger)
	health := NewHealthHandler(cfg.Store)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Sessions.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.IsDevelopment)))
		r.Use(middleware.LoadUser(cfg.Sessions, h.users))
		if cfg.PublicLimiter != nil {
			r.Use(cfg.PublicLimiter.Middleware())
		}

		r.Route("/auth", func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.With(cfg.LoginProtection.Middleware()).Post("/login", h.Login)
			} else {
				r.Post("/login", h.Login)
			}
			r.Post("/logout", h.Logout)
			r.With(middleware.RequireUser).Get("/me", h.Me)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Get("/{id}", h.GetPost)
			r.Post("/{id}/views", h.IncrementViews)
			r.Post("/{id}/like", h.LikePost)
			r.Delete("/{id}/like", h.UnlikePost)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.CreatePost)
				r.Put("/{id}", h.UpdatePost)
				r.Delete("/{id}", h.DeletePost)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}", h.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.CreateCategory)
				r.Put("/{id}", h.UpdateCategory)
				r.Delete("/{id}", h.DeleteCategory)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.ListTags)
			r.With(middleware.RequireAdmin).Post("/recount", h.RecountTags)
		})
	})

	return r
}
