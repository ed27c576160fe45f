package service

import (
	"sync"

	"github.com/google/uuid"
)

// LockKeeper hands out one mutex per room so that every read-then-write
// operation on a room's state runs serialized. Two handlers can otherwise both
// observe "all voted" and both resolve the vote. Locks are never removed; a
// finished room's mutex is a few words of memory.
type LockKeeper struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLockKeeper() *LockKeeper {
	return &LockKeeper{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the room's mutex and returns the unlock function.
func (k *LockKeeper) Lock(roomID uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		k.locks[roomID] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
