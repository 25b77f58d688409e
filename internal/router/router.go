// Package router assembles the HTTP routing table.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mkozhevn/photocards/internal/apperr"
	"github.com/mkozhevn/photocards/internal/cards"
	"github.com/mkozhevn/photocards/internal/config"
	"github.com/mkozhevn/photocards/internal/logger"
	"github.com/mkozhevn/photocards/internal/middleware"
	"github.com/mkozhevn/photocards/internal/users"
)

// New wires middleware and routes into the service's router.
func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	tokens middleware.TokenVerifier,
	usersHandler *users.Handler,
	cardsHandler *cards.Handler,
) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/signup", usersHandler.Register)
	r.Post("/signin", usersHandler.Login)

	requireAuth := middleware.RequireAuth(tokens, log)

	// User routes (protected)
	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", usersHandler.List)
		r.Get("/me", usersHandler.Me)
		r.Patch("/me", usersHandler.UpdateProfile)
		r.Patch("/me/avatar", usersHandler.UpdateAvatar)
		r.Get("/{id}", usersHandler.Get)
	})

	// Card routes (protected)
	r.Route("/cards", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cardsHandler.List)
		r.Post("/", cardsHandler.Create)
		r.Delete("/{id}", cardsHandler.Delete)
		r.Put("/{id}/likes", cardsHandler.Like)
		r.Post("/{id}/likes", cardsHandler.Like)
		r.Delete("/{id}/likes", cardsHandler.Unlike)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperr.Respond(w, log, apperr.New(apperr.NotFound, "requested resource not found"))
	})

	return r
}
