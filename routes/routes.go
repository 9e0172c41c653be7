package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/skilloww/cs2panel/handlers"
	"github.com/skilloww/cs2panel/middleware"
)

// SetupRoutes wires the full HTTP surface. The plugin-facing endpoints
// under /api/match are unauthenticated: the game server identifies
// itself with the per-match api key in the event body, and fetches the
// config by match id alone.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	serverHandler *handlers.ServerHandler,
	matchHandler *handlers.MatchHandler,
	webhookHandler *handlers.WebhookHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/steam", authHandler.SteamLogin)
			r.Get("/steam/return", authHandler.SteamReturn)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", teamHandler.ListTeams)
			r.Post("/", teamHandler.CreateTeam)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", teamHandler.GetTeam)
				r.Put("/", teamHandler.UpdateTeam)
				r.Delete("/", teamHandler.DeleteTeam)
				r.Post("/logo", teamHandler.UploadLogo)
			})
		})

		r.Route("/servers", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", serverHandler.ListServers)
			r.Post("/", serverHandler.CreateServer)
			r.Get("/status", serverHandler.FleetStatus)
			r.Route("/{serverID}", func(r chi.Router) {
				r.Delete("/", serverHandler.DeleteServer)
				r.Get("/status", serverHandler.ServerStatus)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", matchHandler.ListMatches)
			r.Post("/", matchHandler.CreateMatch)
			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", matchHandler.GetMatch)
				r.Post("/cancel", matchHandler.CancelMatch)
				r.Post("/load", matchHandler.LoadMatch)
				r.Post("/rcon", matchHandler.MatchRcon)
			})
		})

		// Plugin-facing, no session.
		r.Route("/match/{matchID}", func(r chi.Router) {
			r.Get("/config", matchHandler.MatchConfig)
			r.Post("/webhook", webhookHandler.HandleEvent)
		})
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeMatch)
}
