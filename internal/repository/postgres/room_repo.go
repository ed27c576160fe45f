package postgres

import (
	"context"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *roomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	return translateErr(r.db.WithContext(ctx).Create(room).Error)
}

func (r *roomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Game").
		Preload("Players").
		Preload("Players.User").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &room, nil
}

func (r *roomRepository) GetWaitingByInviteCode(ctx context.Context, code string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Game").
		Preload("Players").
		Preload("Players.User").
		Where("invite_code = ? AND status = ?", code, domain.RoomStatusWaiting).
		First(&room).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &room, nil
}

func (r *roomRepository) OldestWaiting(ctx context.Context) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Game").
		Preload("Players").
		Preload("Players.User").
		Where("status = ?", domain.RoomStatusWaiting).
		Where("(SELECT COUNT(*) FROM players WHERE players.room_id = rooms.id) < ?", domain.MaxRoomPlayers).
		Order("created_at ASC").
		First(&room).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	return translateErr(r.db.WithContext(ctx).
		Omit("Game", "Players", "Owner").
		Save(room).Error)
}

func (r *roomRepository) SetInviteCode(ctx context.Context, roomID uuid.UUID, code string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("invite_code", code)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
