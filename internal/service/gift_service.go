package service

import (
	"context"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

// GiftService records cosmetic gifts between alive players. Gifts touch only
// the log, never the game state.
type GiftService struct {
	playerRepo repository.PlayerRepository
	gameRepo   repository.GameRepository
	logRepo    repository.GameLogRepository
}

func NewGiftService(
	playerRepo repository.PlayerRepository,
	gameRepo repository.GameRepository,
	logRepo repository.GameLogRepository,
) *GiftService {
	return &GiftService{
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		logRepo:    logRepo,
	}
}

func (s *GiftService) Send(ctx context.Context, senderID, recipientID uuid.UUID, giftType string) (*domain.GiftPayload, error) {
	gift, err := domain.ParseGiftType(giftType)
	if err != nil {
		return nil, err
	}

	sender, err := s.playerRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrPlayerNotFound)
	}
	if !sender.IsAlive {
		return nil, domain.ErrDeadPlayerAction
	}

	recipient, err := s.playerRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrTargetNotFound)
	}
	if !recipient.IsAlive {
		return nil, domain.ErrDeadPlayerAction
	}

	game, err := s.gameRepo.GetByRoomID(ctx, sender.RoomID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrGameNotFound)
	}

	payload := domain.GiftPayload{
		SenderID:      sender.ID,
		RecipientID:   recipient.ID,
		SenderName:    sender.DisplayName(),
		RecipientName: recipient.DisplayName(),
		GiftType:      gift,
	}
	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeGift, payload)
	if err != nil {
		return nil, err
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &payload, nil
}
