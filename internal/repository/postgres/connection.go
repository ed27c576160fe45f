package postgres

import (
	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Game{},
		&domain.Player{},
		&domain.GameLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Room:    NewRoomRepository(db),
		Game:    NewGameRepository(db),
		Player:  NewPlayerRepository(db),
		GameLog: NewGameLogRepository(db),
	}
}
