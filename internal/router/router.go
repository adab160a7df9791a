// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// research office site. It organizes routes into the JSON API, the public
// pages and the signed-in dashboard, each with its own middleware stack.
package router

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"researchoffice/internal/handlers"
	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
)

// Per-IP request budgets for the endpoints that attract abuse.
const (
	loginLimit  = 10
	signupLimit = 5
	searchLimit = 60
	limitWindow = time.Minute
)

// Options configures the router.
type Options struct {
	Sessions middleware.SessionLoader

	// TLS marks cookies Secure and enables HSTS.
	TLS bool

	// AllowedOrigins is the CORS allow list for /api.
	AllowedOrigins []string

	// PublicDir holds uploads/ and icons/ when files are stored locally.
	PublicDir string

	// Static is served at /static/.
	Static fs.FS
}

// Handlers are the handler groups the router dispatches to.
type Handlers struct {
	API       *handlers.API
	Pages     *handlers.Pages
	Dashboard *handlers.Dashboard
	Auth      *handlers.Auth
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.TLS))
	r.Use(middleware.LoadSession(opts.Sessions))

	csrf := middleware.NewCSRF(opts.TLS)

	// Operational endpoints: no auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", noListing(http.FileServer(http.FS(opts.Static)))))
	}
	if opts.PublicDir != "" {
		files := noListing(http.FileServer(http.Dir(opts.PublicDir)))
		r.Handle("/uploads/*", files)
		r.Handle("/icons/*", files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-CSRF-Token"},
			MaxAge:         300,
		}))
		apiRoutes(r, h.API, csrf)
	})

	// Pages and forms share the CSRF cookie with the dashboard scripts.
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		pageRoutes(r, h)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if middleware.IsAPI(req) {
			middleware.WriteJSONError(w, http.StatusNotFound, "Not Found")
			return
		}
		h.Pages.NotFound(w, req)
	})

	return r
}

func apiRoutes(r chi.Router, api *handlers.API, csrf func(http.Handler) http.Handler) {
	// Public reads.
	r.Get("/news", api.ListNews)
	r.Get("/news/{id}", api.GetNews)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(searchLimit, limitWindow))
		r.Get("/search", api.Search)
		r.Get("/search/research", api.SearchResearch)
	})

	// Everything else needs a completed sign-in. CSRF runs after auth so an
	// anonymous mutation is answered 401 rather than 403.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Use(csrf)

		r.Get("/projects", api.ListProjects)
		r.With(middleware.RequireCapability(models.CapSubmitProject)).
			Post("/projects", api.CreateProject)
		r.With(middleware.RequireCapability(models.CapReviewProjects)).
			Patch("/projects/{id}", api.UpdateProjectStatus)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(models.CapManageNews))
			r.Post("/news", api.CreateNews)
			r.Patch("/news/{id}", api.UpdateNews)
			r.Delete("/news/{id}", api.DeleteNews)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(models.CapManageResearch))
			r.Post("/upload", api.Upload)
			r.Delete("/research/{id}", api.DeleteResearch)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(models.CapManageUsers))
				r.Get("/users", api.ListUsers)
				r.Patch("/users", api.UpdateUserRole)
				r.Post("/users/{id}/reset-2fa", api.ResetUserTwoFA)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(models.CapManageSystem))
				r.Post("/sync-index", api.SyncIndex)
				r.Post("/cache", api.ClearCache)
			})
			r.With(middleware.RequireCapability(models.CapManageContent)).
				Post("/content", api.UpdateContent)
		})
	})
}

func pageRoutes(r chi.Router, h Handlers) {
	pages, dash, auth := h.Pages, h.Dashboard, h.Auth

	// Public site.
	r.Get("/", pages.Home)
	r.Get("/news", pages.NewsList)
	r.Get("/news/{id}", pages.NewsDetail)
	r.Get("/repository", pages.Repository)
	r.Get("/repository/{year}", pages.RepositoryYear)

	// Auth pages, accessible without a session.
	r.Get("/login", auth.LoginPage)
	r.With(middleware.RateLimit(loginLimit, limitWindow)).Post("/login", auth.LoginSubmit)
	r.Get("/signup", auth.SignupPage)
	r.With(middleware.RateLimit(signupLimit, limitWindow)).Post("/signup", auth.SignupSubmit)
	r.Post("/logout", auth.Logout)

	// 2FA verification: requires auth but NOT completed 2FA.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/2fa/verify", auth.TwoFAVerifyPage)
		r.With(middleware.RateLimit(loginLimit, limitWindow)).Post("/2fa/verify", auth.TwoFAVerifySubmit)
	})

	// Signed-in area.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		r.Get("/dashboard", dash.Home)
		r.Get("/dashboard/my-projects", dash.MyProjects)
		r.Get("/dashboard/2fa/setup", auth.TwoFASetupPage)
		r.Post("/dashboard/2fa/setup", auth.TwoFASetupSubmit)

		r.With(middleware.RequireCapability(models.CapManageResearch)).Get("/upload", dash.Upload)
		r.With(middleware.RequireCapability(models.CapManageContent)).Get("/dashboard/content", dash.ContentPage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(models.CapManageNews))
			r.Get("/dashboard/news", dash.NewsList)
			r.Get("/dashboard/news/new", dash.NewsNew)
			r.Get("/dashboard/news/{id}/edit", dash.NewsEdit)
		})

		r.With(middleware.RequireCapability(models.CapReviewProjects)).Get("/dashboard/admin/projects", dash.AdminProjects)
		r.With(middleware.RequireCapability(models.CapManageUsers)).Get("/dashboard/admin/users", dash.AdminUsers)
		r.With(middleware.RequireCapability(models.CapManageSystem)).Get("/dashboard/admin/system", dash.AdminSystem)
	})
}

// noListing hides directory indexes of file servers.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
