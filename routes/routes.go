package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/league-system/docs"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Schedule   *handlers.ScheduleHandler
	Match      *handlers.MatchHandler
	Standings  *handlers.StandingsHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.HealthHandler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Организаторы: admin, manager и super
	managers := func(r chi.Router) chi.Router {
		return r.With(
			middleware.Authenticate(opts.JWTSecret, opts.Logger),
			middleware.Authorize(models.RoleSuper, models.RoleAdmin, models.RoleManager),
		)
	}

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Get("/teams", h.Tournament.ListTeamsHandler)
			r.Get("/matches", h.Match.ListByTournamentHandler)
			r.Get("/standings", h.Standings.GetHandler)

			managers(r).Post("/schedule", h.Schedule.GenerateHandler)
			managers(r).Post("/standings/export", h.Standings.ExportHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", h.Match.GetByIDHandler)
		r.Get("/results", h.Match.ListResultsHandler)

		managers(r).Patch("/", h.Match.UpdateHandler)
		managers(r).Post("/result", h.Match.RecordResultHandler)
	})

	router.Get("/statistics", h.Standings.StatisticsHandler)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
