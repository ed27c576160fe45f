package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned by every implementation when a record is absent.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint is violated, e.g. on
// invite-code assignment.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	// GetByID loads the room with its game and players (player users included).
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	// GetWaitingByInviteCode finds the WAITING room holding the code.
	GetWaitingByInviteCode(ctx context.Context, code string) (*domain.Room, error)
	// OldestWaiting returns the oldest WAITING room with a free seat.
	OldestWaiting(ctx context.Context) (*domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	// SetInviteCode assigns a code atomically; ErrDuplicate when taken.
	SetInviteCode(ctx context.Context, roomID uuid.UUID, code string) error
}

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	GetByRoomID(ctx context.Context, roomID uuid.UUID) (*domain.Game, error)
	Update(ctx context.Context, game *domain.Game) error
}

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*domain.Player, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
}

type GameLogRepository interface {
	Append(ctx context.Context, entry *domain.GameLog) error
	// Latest returns the most recent entry of the type, ErrNotFound when none.
	Latest(ctx context.Context, gameID uuid.UUID, logType string) (*domain.GameLog, error)
	// ListByTypes returns entries of the given types in the given round,
	// oldest first, skipping entries created before notBefore.
	ListByTypes(ctx context.Context, gameID uuid.UUID, types []string, round int, notBefore time.Time) ([]*domain.GameLog, error)
	// Recent returns up to limit entries created since the cutoff, newest first.
	Recent(ctx context.Context, gameID uuid.UUID, since time.Time, limit int) ([]*domain.GameLog, error)
}

type Repositories struct {
	User    UserRepository
	Room    RoomRepository
	Game    GameRepository
	Player  PlayerRepository
	GameLog GameLogRepository
}
