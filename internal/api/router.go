package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dom/contacts-api/internal/api/handlers"
	"github.com/dom/contacts-api/internal/api/middleware"
	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Contact creation is throttled per user on top of the storage quota.
const (
	createRateLimit  = 5
	createRateWindow = time.Minute
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Avatar)
	contactHandler := handlers.NewContactHandler(services.Contact)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/refresh_token", authHandler.Refresh)
		r.Get("/confirmed_email/{token}", authHandler.ConfirmEmail)
		r.Post("/request_email", authHandler.RequestEmail)

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/me", authHandler.Me)
			r.Post("/upload-avatar", authHandler.UploadAvatar)
		})
	})

	// Contact routes, all owner-scoped behind auth
	r.Route("/contacts", func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))

		r.With(httprate.Limit(createRateLimit, createRateWindow, httprate.WithKeyFuncs(rateLimitKey))).
			Post("/", contactHandler.Create)
		r.Get("/", contactHandler.List)
		r.Get("/search", contactHandler.Search)
		r.Get("/birthdays", contactHandler.UpcomingBirthdays)
		r.Get("/{id}", contactHandler.Get)
		r.Put("/{id}", contactHandler.Update)
		r.Delete("/{id}", contactHandler.Delete)
	})

	return r
}

// rateLimitKey buckets requests per authenticated user, falling back to the
// client IP when there is no user on the context.
func rateLimitKey(r *http.Request) (string, error) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		return strconv.FormatUint(uint64(user.ID), 10), nil
	}
	return httprate.KeyByIP(r)
}
