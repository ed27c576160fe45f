package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

const (
	recentLogWindow = time.Hour
	recentLogLimit  = 20
)

// StateService builds the read-only game-state snapshot broadcast to clients.
type StateService struct {
	roomRepo repository.RoomRepository
	logRepo  repository.GameLogRepository
}

func NewStateService(roomRepo repository.RoomRepository, logRepo repository.GameLogRepository) *StateService {
	return &StateService{roomRepo: roomRepo, logRepo: logRepo}
}

func (s *StateService) GetGameState(ctx context.Context, roomID uuid.UUID) (*domain.GameState, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}
	game := room.Game

	phase := domain.PhaseWaitingForPlayers
	entry, err := s.logRepo.Latest(ctx, game.ID, domain.LogTypePhaseChange)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if entry != nil {
		var payload domain.PhaseChangePayload
		if err := entry.DecodePayload(&payload); err == nil && payload.Phase != "" {
			phase = payload.Phase
		}
	}

	logs, err := s.logRepo.Recent(ctx, game.ID, time.Now().Add(-recentLogWindow), recentLogLimit)
	if err != nil {
		return nil, err
	}

	revealed := room.Status == domain.RoomStatusFinished
	players := make([]domain.PlayerView, 0, len(room.Players))
	for _, p := range room.Players {
		view := domain.PlayerView{
			ID:           p.ID,
			Name:         p.DisplayName(),
			IsAlive:      p.IsAlive,
			RoleRevealed: revealed,
		}
		if revealed {
			role := p.Role
			view.Role = &role
		}
		players = append(players, view)
	}

	return &domain.GameState{
		RoomID:      room.ID,
		RoomStatus:  room.Status,
		Phase:       phase,
		Round:       game.Round,
		Players:     players,
		Logs:        logs,
		GameStarted: game.StartedAt != nil,
		GameEnded:   game.EndedAt != nil,
	}, nil
}
