// Package router sets up all HTTP routes and middleware chains for the
// blog server. Reads are public; writes require a signed-in, 2FA-verified
// user, and the user-management area additionally requires the Admin role.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/handlers"
	"blogpress/internal/identity"
	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, ids identity.Manager, article *handlers.Article, user *handlers.User, auth *handlers.Auth, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	csrf := middleware.NewCSRF(secureCookies)

	// Brute-force guard on credential and TOTP submissions only.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(csrf)

		// Auth pages, accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.With(loginLimiter.Middleware).Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/Article/List", http.StatusSeeOther)
		})

		r.Route("/Article", func(r chi.Router) {
			// Reads are open to everyone.
			r.Get("/List", article.List)
			r.Get("/Details/{id}", article.Details)

			// Writes need a signed-in, 2FA-verified user.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)

				r.Get("/Create", article.CreateForm)
				r.Post("/Create", article.CreateSubmit)
				r.Get("/Edit/{id}", article.EditForm)
				r.Post("/Edit", article.EditSubmit)
				r.Get("/Delete/{id}", article.DeleteConfirm)
				r.Post("/Delete/{id}", article.DeleteSubmit)
			})
		})

		// User management, Admin role only. Membership is checked against
		// the identity service on every request, not the session.
		r.Route("/Admin/User", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin(ids))

			r.Get("/List", user.List)
			r.Get("/Edit/{id}", user.EditForm)
			r.Post("/Edit/{id}", user.EditSubmit)
			r.Get("/Delete/{id}", user.DeleteConfirm)
			r.Post("/Delete/{id}", user.DeleteSubmit)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
