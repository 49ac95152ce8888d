package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/NareshCreations/billiards-tournament-system/handlers"
	"github.com/NareshCreations/billiards-tournament-system/middleware"
	"github.com/NareshCreations/billiards-tournament-system/models"
)

// SetupRoutes wires the full organizer command surface onto the router.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	roundHandler *handlers.RoundHandler,
	matchHandler *handlers.MatchHandler,
	rankingHandler *handlers.RankingHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/sign-up", authHandler.SignUp)
	router.Post("/auth/sign-in", authHandler.SignIn)

	// Live updates use the token carried in the websocket handshake query in
	// real deployments; the dashboard connection itself is read-only.
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Use(middleware.Authenticator(jwtSecret))
		r.Use(middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin))

		r.Post("/", tournamentHandler.Create)
		r.Get("/", tournamentHandler.List)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.Snapshot)
			r.Post("/close", tournamentHandler.Close)
			r.Post("/roster", tournamentHandler.ImportRoster)
			r.Post("/move", roundHandler.Move)

			r.Route("/rounds", func(r chi.Router) {
				r.Post("/", roundHandler.Create)
				r.Route("/{roundID}", func(r chi.Router) {
					r.Patch("/", roundHandler.Rename)
					r.Post("/freeze", roundHandler.Freeze)
					r.Delete("/", roundHandler.Close)
					r.Post("/shuffle", roundHandler.Shuffle)
				})
			})

			r.Route("/matches/{matchID}", func(r chi.Router) {
				r.Post("/start", matchHandler.Start)
				r.Post("/winner", matchHandler.SelectWinner)
				r.Delete("/", matchHandler.Cancel)
			})

			r.Route("/ranking", func(r chi.Router) {
				r.Get("/", rankingHandler.Projection)
				r.Get("/draft", rankingHandler.OpenDraft)
				r.Post("/draft", rankingHandler.SaveDraft)
			})

			r.Post("/players/{playerID}/avatar", playerHandler.UploadAvatar)
		})
	})
}
