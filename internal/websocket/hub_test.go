package websocket_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/service"
	"github.com/dom/mafia-chicago/internal/testutil"
	ws "github.com/dom/mafia-chicago/internal/websocket"
)

func TestHub_SnapshotDroppedWhenGameEnds(t *testing.T) {
	snapshots := testutil.NewTestSnapshotCache(t, time.Minute)

	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := ws.NewHub(svc, snapshots, logger)

	room, _, players := testutil.SeedActiveGame(t, repos)

	// A running game refreshes the cached snapshot on every broadcast.
	hub.BroadcastState(ctx, room.ID)
	cached, err := snapshots.Get(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, room.ID, cached.RoomID)
	assert.False(t, cached.GameEnded)

	mafia := players[0]
	mafia.IsAlive = false
	require.NoError(t, repos.Player.Update(ctx, mafia))
	victory, err := svc.Victory.Check(ctx, room.ID)
	require.NoError(t, err)
	require.True(t, victory.GameOver)

	// The game-over broadcast drops the snapshot instead of caching it.
	hub.BroadcastState(ctx, room.ID)
	cached, err = snapshots.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
