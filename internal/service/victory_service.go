package service

import (
	"context"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

type VictoryService struct {
	roomRepo repository.RoomRepository
	gameRepo repository.GameRepository
	logRepo  repository.GameLogRepository
	locks    *LockKeeper
}

func NewVictoryService(
	roomRepo repository.RoomRepository,
	gameRepo repository.GameRepository,
	logRepo repository.GameLogRepository,
	locks *LockKeeper,
) *VictoryService {
	return &VictoryService{
		roomRepo: roomRepo,
		gameRepo: gameRepo,
		logRepo:  logRepo,
		locks:    locks,
	}
}

// Check evaluates the win condition from alive role counts. Mafia wins with
// at most one non-mafia survivor; civilians win once no mafia is alive.
// Calling again after the room finished is harmless.
func (s *VictoryService) Check(ctx context.Context, roomID uuid.UUID) (*domain.VictoryResult, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrRoomNotFound)
	}
	if room.Game == nil {
		return nil, domain.ErrGameNotFound
	}

	var aliveMafia, aliveCivilians int
	var aliveIDs []uuid.UUID
	for _, p := range room.Players {
		if !p.IsAlive {
			continue
		}
		aliveIDs = append(aliveIDs, p.ID)
		if p.Role == domain.RoleMafia {
			aliveMafia++
		} else {
			aliveCivilians++
		}
	}

	result := &domain.VictoryResult{
		AliveMafia:     aliveMafia,
		AliveCivilians: aliveCivilians,
	}
	switch {
	case aliveMafia > 0 && aliveCivilians <= 1:
		result.GameOver = true
		result.Winner = domain.WinnerMafia
	case aliveMafia == 0 && aliveCivilians > 0:
		result.GameOver = true
		result.Winner = domain.WinnerCivilians
	}

	if !result.GameOver || room.Status == domain.RoomStatusFinished {
		return result, nil
	}

	entry, err := domain.NewGameLog(room.Game.ID, room.Game.Round, domain.LogTypeGameOver, domain.GameOverPayload{
		Winner:       result.Winner,
		AlivePlayers: aliveIDs,
	})
	if err != nil {
		return nil, err
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	room.Status = domain.RoomStatusFinished
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}

	now := time.Now()
	game := room.Game
	game.EndedAt = &now
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, err
	}

	return result, nil
}
