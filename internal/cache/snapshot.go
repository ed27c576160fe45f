// Package cache keeps the last broadcast game-state snapshot per room in
// Redis so a reconnecting socket can be synced without recomputing the
// projection. The store stays authoritative; a cache miss is never an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache connects to Redis and verifies the connection.
func NewSnapshotCache(addr string, db int, ttl time.Duration) (*SnapshotCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &SnapshotCache{rdb: rdb, ttl: ttl}, nil
}

func snapshotKey(roomID uuid.UUID) string {
	return "mafia:snapshot:" + roomID.String()
}

// Set stores the snapshot with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, state *domain.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(state.RoomID), data, c.ttl).Err()
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *SnapshotCache) Get(ctx context.Context, roomID uuid.UUID) (*domain.GameState, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Invalidate drops the cached snapshot for a room.
func (c *SnapshotCache) Invalidate(ctx context.Context, roomID uuid.UUID) error {
	return c.rdb.Del(ctx, snapshotKey(roomID)).Err()
}
