package postgres

import (
	"context"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *gameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	return translateErr(r.db.WithContext(ctx).Create(game).Error)
}

func (r *gameRepository) GetByRoomID(ctx context.Context, roomID uuid.UUID) (*domain.Game, error) {
	var game domain.Game
	err := r.db.WithContext(ctx).First(&game, "room_id = ?", roomID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &game, nil
}

func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	return translateErr(r.db.WithContext(ctx).Save(game).Error)
}
