package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/mafia-chicago/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses: not-found
// 404, invalid state 409, dead-player 403, invalid input 400.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrGameNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrTargetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRoomFull),
		errors.Is(err, domain.ErrRoomNotWaiting),
		errors.Is(err, domain.ErrRoomNotActive),
		errors.Is(err, domain.ErrInsufficientPlayers):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDeadPlayerAction):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidGiftType),
		errors.Is(err, domain.ErrInvalidActionKind):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
