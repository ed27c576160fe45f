package postgres

import (
	"context"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameLogRepository struct {
	db *gorm.DB
}

func NewGameLogRepository(db *gorm.DB) *gameLogRepository {
	return &gameLogRepository{db: db}
}

func (r *gameLogRepository) Append(ctx context.Context, entry *domain.GameLog) error {
	return translateErr(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gameLogRepository) Latest(ctx context.Context, gameID uuid.UUID, logType string) (*domain.GameLog, error) {
	var entry domain.GameLog
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND type = ?", gameID, logType).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &entry, nil
}

func (r *gameLogRepository) ListByTypes(ctx context.Context, gameID uuid.UUID, types []string, round int, notBefore time.Time) ([]*domain.GameLog, error) {
	var entries []*domain.GameLog
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND type IN ? AND round = ?", gameID, types, round).
		Where("created_at >= ?", notBefore).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return entries, nil
}

func (r *gameLogRepository) Recent(ctx context.Context, gameID uuid.UUID, since time.Time, limit int) ([]*domain.GameLog, error) {
	var entries []*domain.GameLog
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND created_at >= ?", gameID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return entries, nil
}
