package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-account-api/internal/api/account"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AccountHandler         account.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"success":true,"message":"Server is running"}`))
		})

		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Group(func(r chi.Router) {
				r.Post("/register", cfg.AccountHandler.Register)
				r.Post("/login", cfg.AccountHandler.Login)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)

				r.Get("/profile", cfg.AccountHandler.GetProfile)
				r.Put("/profile", cfg.AccountHandler.UpdateProfile)
				r.Delete("/profile", cfg.AccountHandler.DeleteAccount)
				r.Put("/change-password", cfg.AccountHandler.ChangePassword)
				r.Post("/logout", cfg.AccountHandler.Logout)
			})
		})
	})

	return r
}
