package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/prode/docs"
	"github.com/Dosada05/prode/handlers"
	"github.com/Dosada05/prode/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Match       *handlers.MatchHandler
	Standings   *handlers.StandingsHandler
	Prediction  *handlers.PredictionHandler
	Bracket     *handlers.BracketHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	router.Route("/api/v1/tournaments/{tournamentID}", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/matches", h.Match.ListHandler)
		r.Get("/standings", h.Standings.OfficialHandler)
		r.Get("/bracket/locks", h.Bracket.LocksHandler)
		r.Get("/leaderboard", h.Leaderboard.LeaderboardHandler)

		// Маршруты участника
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/standings/simulated", h.Standings.SimulatedHandler)

			r.Get("/predictions", h.Prediction.ListHandler)
			r.Get("/predictions/score", h.Prediction.ScoreHandler)
			r.Put("/predictions/{matchID}", h.Prediction.SaveHandler)

			r.Get("/bracket", h.Bracket.GetHandler)
			r.Put("/bracket", h.Bracket.SubmitHandler)
			r.Delete("/bracket", h.Bracket.ClearHandler)
			r.Put("/bracket/picks/{matchID}", h.Bracket.PickHandler)

			r.Put("/tiebreaker", h.Leaderboard.TiebreakerHandler)
		})

		// Маршруты администратора
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/matches/import", h.Match.ImportHandler)
			r.Put("/matches/{matchID}/result", h.Match.RecordResultHandler)
			r.Post("/standings/snapshot", h.Standings.SnapshotHandler)
		})
	})
}
