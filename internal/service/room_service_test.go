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

func TestRoomService_JoinCreatesRoomWhenNoneWaiting(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	res, err := svc.Room.Join(ctx, "ext-alice", "Alice", "")
	require.NoError(t, err)

	assert.True(t, res.IsNewRoom)
	assert.Equal(t, 1, res.PlayersCount)
	assert.Equal(t, domain.MaxRoomPlayers, res.MaxPlayers)
	assert.False(t, res.Started)
	require.NotNil(t, res.InviteCode)
	assert.Len(t, *res.InviteCode, 8)

	room, err := repos.Room.GetByID(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusWaiting, room.Status)
	assert.Equal(t, domain.DefaultRoomName, room.Name)
	require.NotNil(t, room.Game)
	assert.Equal(t, 0, room.Game.Round)
}

func TestRoomService_JoinSeatsIntoOldestWaitingRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, _, _ := testutil.SeedWaitingRoom(t, repos, 3)

	res, err := svc.Room.Join(ctx, "ext-newcomer", "Newcomer", "")
	require.NoError(t, err)

	assert.False(t, res.IsNewRoom)
	assert.Equal(t, room.ID, res.RoomID)
	assert.Equal(t, 4, res.PlayersCount)
}

func TestRoomService_RejoinReturnsExistingSeat(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	first, err := svc.Room.Join(ctx, "ext-alice", "Alice", "")
	require.NoError(t, err)

	second, err := svc.Room.Join(ctx, "ext-alice", "Alice", "")
	require.NoError(t, err)

	assert.Equal(t, first.RoomID, second.RoomID)
	assert.Equal(t, first.PlayerID, second.PlayerID)
	assert.Equal(t, 1, second.PlayersCount)
}

func TestRoomService_EighthJoinStartsGame(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, _, _ := testutil.SeedWaitingRoom(t, repos, 7)

	res, err := svc.Room.Join(ctx, "ext-eighth", "Eighth", "")
	require.NoError(t, err)

	assert.Equal(t, room.ID, res.RoomID)
	assert.Equal(t, 8, res.PlayersCount)
	assert.True(t, res.Started)

	updated, err := repos.Room.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusActive, updated.Status)
	require.NotNil(t, updated.Game.StartedAt)
	assert.Equal(t, 1, updated.Game.Round)

	roleCounts := map[domain.Role]int{}
	for _, p := range updated.Players {
		roleCounts[p.Role]++
	}
	assert.Equal(t, 1, roleCounts[domain.RoleMafia])
	assert.Equal(t, 1, roleCounts[domain.RoleDoctor])
	assert.Equal(t, 1, roleCounts[domain.RoleSheriff])
	assert.Equal(t, 5, roleCounts[domain.RoleCivilian])

	started, err := repos.GameLog.Latest(ctx, updated.Game.ID, domain.LogTypeGameStarted)
	require.NoError(t, err)
	assert.Equal(t, 1, started.Round)
}

func TestRoomService_JoinByInviteUnknownCode(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	_, err := svc.Room.Join(context.Background(), "ext-alice", "Alice", "deadbeef")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomService_JoinByInviteFullRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, _, _ := testutil.SeedWaitingRoom(t, repos, domain.MaxRoomPlayers)
	require.NoError(t, repos.Room.SetInviteCode(ctx, room.ID, "cafe0001"))

	_, err := svc.Room.Join(ctx, "ext-late", "Latecomer", "cafe0001")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
}

func TestRoomService_StartRequiresFullRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	room, _, _ := testutil.SeedWaitingRoom(t, repos, 5)

	err := svc.Room.Start(context.Background(), room.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientPlayers)
}

func TestRoomService_CreateInviteIsIdempotent(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, _, _ := testutil.SeedWaitingRoom(t, repos, 2)

	code, err := svc.Room.CreateInvite(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	again, err := svc.Room.CreateInvite(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	roomID, err := svc.Room.GetRoomByInviteCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, room.ID, roomID)
}

func TestRoomService_CreateInviteRejectsActiveRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	room, _, _ := testutil.SeedActiveGame(t, repos)

	_, err := svc.Room.CreateInvite(context.Background(), room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotWaiting)
}

func TestRoomService_FinishEndsGame(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, _ := testutil.SeedActiveGame(t, repos)

	require.NoError(t, svc.Room.Finish(ctx, room.ID))

	updated, err := repos.Room.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusFinished, updated.Status)
	assert.NotNil(t, updated.Game.EndedAt)

	_, err = repos.GameLog.Latest(ctx, game.ID, domain.LogTypeGameEnded)
	assert.NoError(t, err)
}

func TestRoomService_PlayerForResolvesSeat(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	res, err := svc.Room.Join(ctx, "ext-alice", "Alice", "")
	require.NoError(t, err)

	player, err := svc.Room.PlayerFor(ctx, res.RoomID, "ext-alice")
	require.NoError(t, err)
	assert.Equal(t, res.PlayerID, player.ID)

	_, err = svc.Room.PlayerFor(ctx, res.RoomID, "ext-stranger")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}
