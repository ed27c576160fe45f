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

func TestVoteService_SubmitDeadVoter(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	_, _, players := testutil.SeedActiveGame(t, repos)

	dead := players[5]
	dead.IsAlive = false
	require.NoError(t, repos.Player.Update(ctx, dead))

	err := svc.Vote.Submit(ctx, dead.ID, players[0].ID)
	assert.ErrorIs(t, err, domain.ErrDeadPlayerAction)
}

func TestVoteService_ResolveExecutesFirstToReachLead(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, players := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseDiscussion, domain.PhaseVoting)

	a, b := players[3], players[4]

	// a reaches three votes before b does; the tie breaks toward a.
	require.NoError(t, svc.Vote.Submit(ctx, players[0].ID, a.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[1].ID, a.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[2].ID, a.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[5].ID, b.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[6].ID, b.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[7].ID, b.ID))

	result, err := svc.Vote.Resolve(ctx, room.ID)
	require.NoError(t, err)

	require.NotNil(t, result.Executed)
	assert.Equal(t, a.ID, result.Executed.PlayerID)
	assert.Equal(t, 3, result.Executed.Votes)
	assert.Equal(t, 3, result.VoteCounts[a.ID])
	assert.Equal(t, 3, result.VoteCounts[b.ID])

	executed, err := repos.Player.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, executed.IsAlive)

	entry, err := repos.GameLog.Latest(ctx, game.ID, domain.LogTypeExecution)
	require.NoError(t, err)
	var payload domain.ExecutionPayload
	require.NoError(t, entry.DecodePayload(&payload))
	assert.Equal(t, a.ID, payload.PlayerID)

	phase, err := svc.Phase.CurrentPhase(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDeath, phase)
	assert.Equal(t, domain.PhaseDeath, result.NextPhase)
}

func TestVoteService_SubmitRequiresActiveRoom(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)

	_, _, players := testutil.SeedWaitingRoom(t, repos, 3)

	err := svc.Vote.Submit(context.Background(), players[0].ID, players[1].ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotActive)
}

func TestVoteService_RevoteSupersedesEarlierBallot(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, players := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseDiscussion, domain.PhaseVoting)

	a, b := players[3], players[4]

	require.NoError(t, svc.Vote.Submit(ctx, players[0].ID, a.ID))
	require.NoError(t, svc.Vote.Submit(ctx, players[0].ID, b.ID))

	result, err := svc.Vote.Resolve(ctx, room.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.VoteCounts[a.ID])
	assert.Equal(t, 1, result.VoteCounts[b.ID])
	require.NotNil(t, result.Executed)
	assert.Equal(t, b.ID, result.Executed.PlayerID)
}

func TestVoteService_CheckAllVoted(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, players := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseDiscussion, domain.PhaseVoting)

	target := players[3]
	for _, p := range players[:7] {
		require.NoError(t, svc.Vote.Submit(ctx, p.ID, target.ID))
	}

	done, err := svc.Vote.CheckAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, done)

	// A revote from a player who already voted does not complete the round.
	require.NoError(t, svc.Vote.Submit(ctx, players[0].ID, players[4].ID))
	done, err = svc.Vote.CheckAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, svc.Vote.Submit(ctx, players[7].ID, target.ID))
	done, err = svc.Vote.CheckAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestVoteService_ResolveIfAllVoted(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, players := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseDiscussion, domain.PhaseVoting)

	target := players[3]
	for _, p := range players[:7] {
		require.NoError(t, svc.Vote.Submit(ctx, p.ID, target.ID))
	}

	// Not everyone has voted yet.
	result, err := svc.Vote.ResolveIfAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, svc.Vote.Submit(ctx, players[7].ID, target.ID))

	result, err = svc.Vote.ResolveIfAllVoted(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, target.ID, result.Executed.PlayerID)

	// The phase moved past VOTING, so a second caller resolves nothing.
	result, err = svc.Vote.ResolveIfAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestVoteService_ResolveIfAllVotedOutsideVotingPhase(t *testing.T) {
	repos := testutil.NewRepos()
	svc := service.NewServices(repos)
	ctx := context.Background()

	room, game, players := testutil.SeedActiveGame(t, repos)
	testutil.SetPhase(t, repos, game, domain.PhaseMorning, domain.PhaseDiscussion)

	for _, p := range players {
		require.NoError(t, svc.Vote.Submit(ctx, p.ID, players[3].ID))
	}

	result, err := svc.Vote.ResolveIfAllVoted(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}
