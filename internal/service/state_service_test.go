package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/testutil"
)

func TestStateService_RolesHiddenWhileActive(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	room, game, _ := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseWaitingForPlayers, domain.PhaseNightLocationSelection)

	state, err := svc.State.GetGameState(context.Background(), room.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomStatusActive, state.RoomStatus)
	assert.Equal(t, domain.PhaseNightLocationSelection, state.Phase)
	assert.Equal(t, 1, state.Round)
	assert.True(t, state.GameStarted)
	assert.False(t, state.GameEnded)
	require.Len(t, state.Players, 8)
	for _, p := range state.Players {
		assert.Nil(t, p.Role)
		assert.False(t, p.RoleRevealed)
	}
	assert.NotEmpty(t, state.Logs)
}

func TestStateService_RolesRevealedWhenFinished(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, _, players := testutil.SeedActiveGame(t, repos)

	mafia := players[0]
	mafia.IsAlive = false
	require.NoError(t, repos.Player.Update(ctx, mafia))
	_, err := svc.Victory.Check(ctx, room.ID)
	require.NoError(t, err)

	state, err := svc.State.GetGameState(ctx, room.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.RoomStatusFinished, state.RoomStatus)
	assert.True(t, state.GameEnded)

	revealed := map[domain.Role]int{}
	for _, p := range state.Players {
		assert.True(t, p.RoleRevealed)
		require.NotNil(t, p.Role)
		revealed[*p.Role]++
	}
	assert.Equal(t, 1, revealed[domain.RoleMafia])
	assert.Equal(t, 1, revealed[domain.RoleDoctor])
	assert.Equal(t, 1, revealed[domain.RoleSheriff])
}

func TestStateService_UnknownRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	_, _, players := testutil.SeedActiveGame(t, repos)

	_, err := svc.State.GetGameState(context.Background(), players[0].ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
