package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mestre-da-redacao/backend/internal/api/handlers"
	"github.com/mestre-da-redacao/backend/internal/api/middleware"
	"github.com/mestre-da-redacao/backend/internal/config"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/metrics"
)

// Handlers aggregates every request handler the router mounts
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Reset        *handlers.ResetHandler
	Subscription *handlers.SubscriptionHandler
	Essay        *handlers.EssayHandler
	Theme        *handlers.ThemeHandler
	Lesson       *handlers.LessonHandler
	Material     *handlers.MaterialHandler
	Chat         *handlers.ChatHandler
	File         *handlers.FileHandler
}

// New builds the HTTP handler tree
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.DefaultCORS(cfg.Server.SiteURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())

		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/auth/logout", h.Auth.Logout)

		// Password reset flow
		r.Post("/api/send-reset-email", h.Reset.SendResetEmail)
		r.Post("/api/reset-password", h.Reset.ResetPassword)
		r.Post("/api/finalize-reset", h.Reset.FinalizeReset)
		r.Post("/api/check-reset-password", h.Reset.CheckResetPassword)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/auth/me", h.Auth.Me)

		// Subscription and entitlements
		r.Route("/api/v1/subscriptions", func(r chi.Router) {
			r.Get("/me", h.Subscription.Me)
			r.Get("/entitlements", h.Subscription.Entitlements)
			r.Post("/cancel", h.Subscription.Cancel)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff())
				r.Post("/change-plan", h.Subscription.ChangePlan)
				r.Get("/{id}/plan-changes", h.Subscription.PlanChanges)
			})
		})

		// Essays
		r.Route("/api/v1/essays", func(r chi.Router) {
			r.Post("/", h.Essay.Submit)
			r.Get("/", h.Essay.ListMine)
			r.Get("/{id}", h.Essay.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff())
				r.Get("/pending", h.Essay.ListPending)
				r.Post("/{id}/correction", h.Essay.CompleteCorrection)
			})
		})

		// Professor tooling alias kept for the existing frontend
		r.With(middleware.RequireStaff()).Post("/api/send-essay-notification", h.Essay.Notify)

		// Themes (propostas)
		r.Route("/api/v1/themes", func(r chi.Router) {
			r.Get("/", h.Theme.List)
			r.Get("/{id}", h.Theme.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff())
				r.Post("/", h.Theme.Create)
				r.Put("/{id}", h.Theme.Update)
				r.Delete("/{id}", h.Theme.Retire)
			})
		})

		// Lessons (videoaulas)
		r.Route("/api/v1/lessons", func(r chi.Router) {
			r.Get("/", h.Lesson.List)
			r.Get("/{id}", h.Lesson.Get)
			r.Post("/{id}/progress", h.Lesson.SaveProgress)
			r.Get("/progress", h.Lesson.MyProgress)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff())
				r.Post("/", h.Lesson.Create)
				r.Put("/{id}", h.Lesson.Update)
				r.Delete("/{id}", h.Lesson.Delete)
			})
		})

		// Materials
		r.Route("/api/v1/materials", func(r chi.Router) {
			r.Get("/", h.Material.List)
			r.Get("/{id}", h.Material.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff())
				r.Post("/", h.Material.Create)
				r.Put("/{id}", h.Material.Update)
				r.Delete("/{id}", h.Material.Delete)
			})
		})

		// Chat tickets
		r.Route("/api/v1/chats", func(r chi.Router) {
			r.Post("/", h.Chat.Open)
			r.Get("/", h.Chat.ListMine)
			r.With(middleware.RequireStaff()).Get("/open", h.Chat.ListOpen)
			r.Get("/{id}", h.Chat.Get)
			r.Post("/{id}/messages", h.Chat.Reply)
			r.Post("/{id}/close", h.Chat.Close)
		})

		// Presigned file URLs (only when object storage is configured)
		if h.File != nil {
			r.Route("/api/v1/files", func(r chi.Router) {
				r.Post("/upload-url", h.File.UploadURL)
				r.Get("/download-url", h.File.DownloadURL)
			})
		}
	})

	return r
}
