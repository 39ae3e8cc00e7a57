package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glowupgrow/terrarium-api/internal/api/handlers"
	"github.com/glowupgrow/terrarium-api/internal/api/middleware"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, metrics *observability.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(observability.TraceContext)
	r.Use(middleware.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	userHandler := handlers.NewUserHandler(services.Auth)
	terrariumHandler := handlers.NewTerrariumHandler(services.Terrarium)
	wsHandler := handlers.NewWebSocketHandler(hub)
	requireSession := middleware.Auth(services.Auth, metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Get("/{id}", userHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/", userHandler.Me)
				r.Put("/", userHandler.UpdateProfile)
				r.Delete("/", userHandler.Logout)
			})
		})

		r.Route("/terrarium", func(r chi.Router) {
			r.Post("/new", terrariumHandler.Create)
			r.Put("/plant", terrariumHandler.AssignPlant)
			r.Put("/readings", terrariumHandler.RecordReadings)
			r.Get("/", terrariumHandler.List)
			r.Get("/single", terrariumHandler.Get)
			r.Get("/models", terrariumHandler.ListModels)
			r.Get("/plants", terrariumHandler.ListPlants)

			r.With(requireSession).Get("/live", wsHandler.Handle)
		})
	})

	return r
}
