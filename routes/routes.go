package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/officesports/matchday/handlers"
	"github.com/officesports/matchday/middleware"
)

// SetupRoutes mounts the full HTTP surface. Reads are public; everything
// that mutates state sits behind the admin token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	participantHandler *handlers.ParticipantHandler,
	fixtureHandler *handlers.FixtureHandler,
	matchHandler *handlers.MatchHandler,
	rosterHandler *handlers.RosterHandler,
	reportHandler *handlers.ReportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize("admin")

	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/participants", func(r chi.Router) {
		r.Get("/", participantHandler.ListParticipantsHandler)
		r.Get("/{participantID}", participantHandler.GetParticipantHandler)
		r.Get("/export", rosterHandler.ExportParticipantsHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", participantHandler.CreateParticipantHandler)
			r.Put("/{participantID}/present", participantHandler.SetPresentHandler)
			r.Delete("/{participantID}", participantHandler.DeleteParticipantHandler)
			r.Post("/import", rosterHandler.ImportHandler)
			r.Post("/reset", participantHandler.ResetAllHandler)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Get("/", fixtureHandler.ListFixturesHandler)
		r.Get("/{fixtureID}", fixtureHandler.GetFixtureHandler)
		r.Get("/export", rosterHandler.ExportFixturesHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/generate", fixtureHandler.GenerateFixturesHandler)
			r.Patch("/{fixtureID}", fixtureHandler.UpdateFixtureHandler)
			r.Delete("/{fixtureID}", fixtureHandler.DeleteFixtureHandler)
			r.Post("/{fixtureID}/emails", fixtureHandler.SendFixtureEmailsHandler)
			r.Post("/emails", fixtureHandler.SendCategoryEmailsHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListMatchesHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/{matchID}/result", matchHandler.RecordResultHandler)
			r.Post("/{matchID}/reset", matchHandler.ResetResultHandler)
			r.Patch("/{matchID}", matchHandler.UpdateTrackerHandler)
			r.Patch("/{matchID}/details", matchHandler.UpdateDetailsHandler)
			r.Delete("/{matchID}", matchHandler.DeleteMatchHandler)
		})
	})

	router.Route("/reports", func(r chi.Router) {
		r.Get("/", reportHandler.DashboardHandler)
		r.Get("/upcoming", reportHandler.UpcomingMatchesHandler)
		r.Get("/winners", reportHandler.RecentWinnersHandler)
	})

	router.Get("/ws/categories/{category}", webSocketHandler.ServeWs)
}
