package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/w12190/message.ly/internal/auth"
	"github.com/w12190/message.ly/internal/config"
	"github.com/w12190/message.ly/internal/handlers"
	"github.com/w12190/message.ly/internal/middleware"
	"github.com/w12190/message.ly/internal/repo"
)

// newRouter wires repos, auth, and handlers into the full middleware chain.
// Kept separate from main so integration tests can run the whole API against
// a sqlmock-backed *sql.DB.
func newRouter(db *sql.DB, cfg config.Config) chi.Router {
	userRepo := repo.NewUserRepo(db, cfg.BcryptCost)
	messageRepo := repo.NewMessageRepo(db)

	secret := []byte(cfg.JWTSecret)
	authenticator := auth.NewAuthenticator(userRepo, secret, time.Duration(cfg.JWTExpireHours)*time.Hour)
	guard := auth.NewGuard(userRepo, messageRepo, secret)

	authHandler := &handlers.AuthHandler{Users: userRepo, Authenticator: authenticator}
	userHandler := &handlers.UserHandler{Users: userRepo, Messages: messageRepo, Guard: guard}
	messageHandler := &handlers.MessageHandler{Guard: guard}

	r := chi.NewRouter()

	// middlewares
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	// auth routes (public, rate limited)
	authLimiter := middleware.AuthRateLimiter()
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(guard))
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Get("/{username}", userHandler.GetUser)
			r.Get("/{username}/to", userHandler.MessagesTo)
			r.Get("/{username}/from", userHandler.MessagesFrom)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", messageHandler.CreateMessage)
			r.Get("/{id}", messageHandler.GetMessage)
			r.Post("/{id}/read", messageHandler.MarkRead)
		})
	})

	return r
}
