// Package testutil seeds game fixtures against the in-memory store so
// service tests run without a database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/dom/mafia-chicago/internal/repository/memory"
)

func NewRepos() *repository.Repositories {
	return memory.NewRepositories()
}

func SeedUser(t *testing.T, repos *repository.Repositories, name string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:          uuid.New(),
		ExternalID:  fmt.Sprintf("ext-%s", uuid.New().String()[:8]),
		DisplayName: name,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

// SeedWaitingRoom creates a WAITING room with its game row and n seated
// players. The first player's user owns the room.
func SeedWaitingRoom(t *testing.T, repos *repository.Repositories, n int) (*domain.Room, *domain.Game, []*domain.Player) {
	t.Helper()
	ctx := context.Background()

	owner := SeedUser(t, repos, "Player 1")
	room := &domain.Room{
		ID:        uuid.New(),
		Name:      domain.DefaultRoomName,
		Status:    domain.RoomStatusWaiting,
		OwnerID:   owner.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Room.Create(ctx, room))

	game := &domain.Game{
		ID:        uuid.New(),
		RoomID:    room.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Game.Create(ctx, game))

	players := make([]*domain.Player, 0, n)
	for i := 0; i < n; i++ {
		user := owner
		if i > 0 {
			user = SeedUser(t, repos, fmt.Sprintf("Player %d", i+1))
		}
		player := &domain.Player{
			ID:       uuid.New(),
			UserID:   user.ID,
			RoomID:   room.ID,
			GameID:   game.ID,
			Role:     domain.RoleCivilian,
			IsAlive:  true,
			JoinedAt: time.Now(),
		}
		require.NoError(t, repos.Player.Create(ctx, player))
		players = append(players, player)
	}

	return room, game, players
}

// SeedActiveGame creates a full 8-player game in progress. Roles are fixed:
// players[0] is the mafia, players[1] the doctor, players[2] the sheriff,
// the rest civilians. The game sits in round 1.
func SeedActiveGame(t *testing.T, repos *repository.Repositories) (*domain.Room, *domain.Game, []*domain.Player) {
	t.Helper()
	ctx := context.Background()

	room, game, players := SeedWaitingRoom(t, repos, domain.MaxRoomPlayers)

	roles := []domain.Role{domain.RoleMafia, domain.RoleDoctor, domain.RoleSheriff}
	for i, role := range roles {
		players[i].Role = role
		require.NoError(t, repos.Player.Update(ctx, players[i]))
	}

	room.Status = domain.RoomStatusActive
	require.NoError(t, repos.Room.Update(ctx, room))

	now := time.Now()
	game.StartedAt = &now
	game.Round = 1
	require.NoError(t, repos.Game.Update(ctx, game))

	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypeGameStarted, map[string]int{
		"playersCount": len(players),
	})
	require.NoError(t, err)
	require.NoError(t, repos.GameLog.Append(ctx, entry))

	return room, game, players
}

// SetPhase drives the derived phase by appending a transition entry.
func SetPhase(t *testing.T, repos *repository.Repositories, game *domain.Game, prev, next domain.Phase) {
	t.Helper()

	entry, err := domain.NewGameLog(game.ID, game.Round, domain.LogTypePhaseChange, domain.PhaseChangePayload{
		Phase:         next,
		PreviousPhase: prev,
		Round:         game.Round,
	})
	require.NoError(t, err)
	require.NoError(t, repos.GameLog.Append(context.Background(), entry))
}
