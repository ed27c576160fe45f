package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GameHandler struct {
	services *service.Services
}

func NewGameHandler(services *service.Services) *GameHandler {
	return &GameHandler{services: services}
}

func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	state, err := h.services.State.GetGameState(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type RoleActionRequest struct {
	PlayerID uuid.UUID `json:"playerId"`
	TargetID uuid.UUID `json:"targetId"`
	Action   string    `json:"action"`
	Location string    `json:"location,omitempty"`
}

func (h *GameHandler) SubmitRoleAction(w http.ResponseWriter, r *http.Request) {
	var req RoleActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseActionKind(req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.services.Night.SubmitAction(r.Context(), req.PlayerID, req.TargetID, kind, req.Location); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *GameHandler) ResolveNight(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	result, err := h.services.Night.ResolveNight(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type VoteRequest struct {
	VoterID  uuid.UUID `json:"voterId"`
	TargetID uuid.UUID `json:"targetId"`
}

func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.Vote.Submit(r.Context(), req.VoterID, req.TargetID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *GameHandler) ResolveVote(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	result, err := h.services.Vote.Resolve(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GameHandler) CheckVictory(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	result, err := h.services.Victory.Check(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GameHandler) NextPhase(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	transition, err := h.services.Phase.Advance(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transition)
}

type SendGiftRequest struct {
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	GiftType    string    `json:"giftType"`
}

func (h *GameHandler) SendGift(w http.ResponseWriter, r *http.Request) {
	var req SendGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gift, err := h.services.Gift.Send(r.Context(), req.SenderID, req.RecipientID, req.GiftType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "gift": gift})
}
