package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dom/mafia-chicago/internal/cache"
)

// NewTestSnapshotCache starts a Redis testcontainer and returns a snapshot
// cache backed by it. Skipped under -short because it needs a docker daemon.
func NewTestSnapshotCache(t *testing.T, ttl time.Duration) *cache.SnapshotCache {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	snapshots, err := cache.NewSnapshotCache(endpoint, 0, ttl)
	if err != nil {
		t.Fatalf("failed to connect snapshot cache: %v", err)
	}
	return snapshots
}
