package handlers

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/dom/mafia-chicago/internal/api/middleware"
	"github.com/dom/mafia-chicago/internal/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *websocket.Hub
	secret string
	logger *logrus.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, secret string, logger *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, secret: secret, logger: logger}
}

// HandleWebSocket authenticates the upgrade via the token query parameter.
// Browsers cannot set headers on websocket requests, so the bearer token
// travels in the URL.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	identity, err := middleware.ParseIdentityToken(h.secret, token)
	if err != nil {
		h.logger.WithError(err).Warn("websocket token rejected")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, identity.ExternalID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
