package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/dom/mafia-chicago/internal/repository/postgres"
	"github.com/dom/mafia-chicago/internal/testutil"
)

func appendLog(t *testing.T, repo repository.GameLogRepository, gameID uuid.UUID, round int, logType string) *domain.GameLog {
	t.Helper()

	entry, err := domain.NewGameLog(gameID, round, logType, map[string]string{"n": uuid.New().String()[:8]})
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestGameLogRepository_Latest(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameLogRepository(testDB.DB)
	ctx := context.Background()

	_, game := seedRoom(t, testDB.DB, domain.RoomStatusActive, nil, 1)

	_, err := repo.Latest(ctx, game.ID, domain.LogTypePhaseChange)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	appendLog(t, repo, game.ID, 1, domain.LogTypePhaseChange)
	time.Sleep(10 * time.Millisecond)
	last := appendLog(t, repo, game.ID, 1, domain.LogTypePhaseChange)

	got, err := repo.Latest(ctx, game.ID, domain.LogTypePhaseChange)
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.ID)
}

func TestGameLogRepository_ListByTypesScopesToRound(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameLogRepository(testDB.DB)
	ctx := context.Background()

	_, game := seedRoom(t, testDB.DB, domain.RoomStatusActive, nil, 1)

	killType := domain.ActionKill.LogType()
	old := appendLog(t, repo, game.ID, 1, killType)
	appendLog(t, repo, game.ID, 1, domain.LogTypeVote)
	time.Sleep(10 * time.Millisecond)
	current := appendLog(t, repo, game.ID, 2, killType)

	entries, err := repo.ListByTypes(ctx, game.ID, []string{killType}, 2, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, current.ID, entries[0].ID)

	entries, err = repo.ListByTypes(ctx, game.ID, []string{killType}, 1, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, old.ID, entries[0].ID)

	// The cutoff prunes entries older than the window.
	entries, err = repo.ListByTypes(ctx, game.ID, []string{killType}, 1, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGameLogRepository_ListByTypesOrdersAscending(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameLogRepository(testDB.DB)
	ctx := context.Background()

	_, game := seedRoom(t, testDB.DB, domain.RoomStatusActive, nil, 1)

	first := appendLog(t, repo, game.ID, 1, domain.LogTypeVote)
	time.Sleep(10 * time.Millisecond)
	second := appendLog(t, repo, game.ID, 1, domain.LogTypeVote)

	entries, err := repo.ListByTypes(ctx, game.ID, []string{domain.LogTypeVote}, 1, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
}

func TestGameLogRepository_RecentLimitsAndOrdersDescending(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameLogRepository(testDB.DB)
	ctx := context.Background()

	_, game := seedRoom(t, testDB.DB, domain.RoomStatusActive, nil, 1)

	for i := 0; i < 5; i++ {
		appendLog(t, repo, game.ID, 1, domain.LogTypeVote)
		time.Sleep(5 * time.Millisecond)
	}
	newest := appendLog(t, repo, game.ID, 1, domain.LogTypeExecution)

	entries, err := repo.Recent(ctx, game.ID, time.Now().Add(-time.Hour), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, newest.ID, entries[0].ID)
}
