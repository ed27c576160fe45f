package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/dom/mafia-chicago/internal/api/handlers"
	"github.com/dom/mafia-chicago/internal/api/middleware"
	"github.com/dom/mafia-chicago/internal/config"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	roomHandler := handlers.NewRoomHandler(services.Room)
	gameHandler := handlers.NewGameHandler(services)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.IdentitySecret, logger)

	r.Route("/api/mafia", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.WithIdentity(cfg.IdentitySecret, logger))

			r.Post("/join", roomHandler.Join)
			r.Get("/players/{roomId}", roomHandler.GetPlayers)
			r.Post("/start/{roomId}", roomHandler.Start)
			r.Post("/finish-game/{roomId}", roomHandler.Finish)
			r.Post("/create-invite/{roomId}", roomHandler.CreateInvite)
			r.Get("/invite/{roomId}", roomHandler.GetInvite)
			r.Get("/room-by-invite", roomHandler.GetRoomByInvite)

			r.Get("/state/{roomId}", gameHandler.GetState)
			r.Post("/submit-role-action", gameHandler.SubmitRoleAction)
			r.Post("/resolve-night/{roomId}", gameHandler.ResolveNight)
			r.Post("/vote", gameHandler.Vote)
			r.Post("/resolve-vote/{roomId}", gameHandler.ResolveVote)
			r.Post("/check-victory/{roomId}", gameHandler.CheckVictory)
			r.Post("/next-phase/{roomId}", gameHandler.NextPhase)
			r.Post("/send-gift", gameHandler.SendGift)
		})

		// WebSocket endpoint; authenticates via token query parameter.
		r.Get("/ws", wsHandler.HandleWebSocket)
	})

	return r
}
