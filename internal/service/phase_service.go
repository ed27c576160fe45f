package service

import (
	"context"
	"errors"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

// PhaseService is the phase state machine. The current phase is derived from
// the latest PHASE_CHANGE log entry; advancing is a pure log append plus the
// round-counter bump on night wrap. Completion checks belong to the callers.
type PhaseService struct {
	roomRepo repository.RoomRepository
	gameRepo repository.GameRepository
	logRepo  repository.GameLogRepository
	locks    *LockKeeper
}

func NewPhaseService(
	roomRepo repository.RoomRepository,
	gameRepo repository.GameRepository,
	logRepo repository.GameLogRepository,
	locks *LockKeeper,
) *PhaseService {
	return &PhaseService{
		roomRepo: roomRepo,
		gameRepo: gameRepo,
		logRepo:  logRepo,
		locks:    locks,
	}
}

type PhaseTransition struct {
	PreviousPhase domain.Phase `json:"previousPhase"`
	CurrentPhase  domain.Phase `json:"currentPhase"`
	Round         int          `json:"round"`
}

// CurrentPhase derives the phase from the log, defaulting to
// WAITING_FOR_PLAYERS when no transition was recorded yet.
func (s *PhaseService) CurrentPhase(ctx context.Context, gameID uuid.UUID) (domain.Phase, error) {
	entry, err := s.logRepo.Latest(ctx, gameID, domain.LogTypePhaseChange)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.PhaseWaitingForPlayers, nil
	}
	if err != nil {
		return "", err
	}
	var payload domain.PhaseChangePayload
	if err := entry.DecodePayload(&payload); err != nil {
		return "", err
	}
	if payload.Phase == "" {
		return domain.PhaseWaitingForPlayers, nil
	}
	return payload.Phase, nil
}

// Advance moves the room to the next phase in the cycle.
func (s *PhaseService) Advance(ctx context.Context, roomID uuid.UUID) (*PhaseTransition, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}
	return s.advance(ctx, room, room.Game)
}

// advance assumes the room lock is held.
func (s *PhaseService) advance(ctx context.Context, room *domain.Room, game *domain.Game) (*PhaseTransition, error) {
	current, err := s.CurrentPhase(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	next := domain.NextPhase(current, room.Status == domain.RoomStatusActive)

	// Wrapping into a new night opens a fresh round; entering the first
	// night from the waiting state keeps round 1 set at start.
	if domain.BeginsNewRound(next) && current != domain.PhaseWaitingForPlayers {
		game.Round++
		if err := s.gameRepo.Update(ctx, game); err != nil {
			return nil, err
		}
	}

	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypePhaseChange, domain.PhaseChangePayload{
		Phase:         next,
		PreviousPhase: current,
		Round:         game.Round,
	})
	if err != nil {
		return nil, err
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return &PhaseTransition{
		PreviousPhase: current,
		CurrentPhase:  next,
		Round:         game.Round,
	}, nil
}
