package postgres

import (
	"context"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	return translateErr(r.db.WithContext(ctx).Create(player).Error)
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&player, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &player, nil
}

func (r *playerRepository) GetByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&player).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &player, nil
}

func (r *playerRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&players).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return players, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	return translateErr(r.db.WithContext(ctx).Omit("User").Save(player).Error)
}
