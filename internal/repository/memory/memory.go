// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. Service tests run against it, and it backs
// docker-less local runs when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/mafia-chicago/internal/domain"
	"github.com/dom/mafia-chicago/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	rooms   map[uuid.UUID]*domain.Room
	games   map[uuid.UUID]*domain.Game
	players map[uuid.UUID]*domain.Player
	logs    map[uuid.UUID][]*domain.GameLog // keyed by game id, append order
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*domain.User),
		rooms:   make(map[uuid.UUID]*domain.Room),
		games:   make(map[uuid.UUID]*domain.Game),
		players: make(map[uuid.UUID]*domain.Player),
		logs:    make(map[uuid.UUID][]*domain.GameLog),
	}
}

// NewRepositories returns the full repository set backed by one store.
func NewRepositories() *repository.Repositories {
	s := NewStore()
	return &repository.Repositories{
		User:    &userRepo{s},
		Room:    &roomRepo{s},
		Game:    &gameRepo{s},
		Player:  &playerRepo{s},
		GameLog: &gameLogRepo{s},
	}
}

// users

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ExternalID == user.ExternalID {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// rooms

type roomRepo struct{ s *Store }

func (r *roomRepo) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if room.InviteCode != nil && r.inviteTakenLocked(*room.InviteCode, room.ID) {
		return repository.ErrDuplicate
	}
	cp := *room
	cp.Game = nil
	cp.Players = nil
	cp.Owner = nil
	r.s.rooms[room.ID] = &cp
	return nil
}

func (r *roomRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.composeLocked(room), nil
}

func (r *roomRepo) GetWaitingByInviteCode(_ context.Context, code string) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, room := range r.s.rooms {
		if room.InviteCode != nil && *room.InviteCode == code && room.Status == domain.RoomStatusWaiting {
			return r.composeLocked(room), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roomRepo) OldestWaiting(_ context.Context) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var oldest *domain.Room
	for _, room := range r.s.rooms {
		if room.Status != domain.RoomStatusWaiting {
			continue
		}
		if r.playerCountLocked(room.ID) >= domain.MaxRoomPlayers {
			continue
		}
		if oldest == nil || room.CreatedAt.Before(oldest.CreatedAt) {
			oldest = room
		}
	}
	if oldest == nil {
		return nil, repository.ErrNotFound
	}
	return r.composeLocked(oldest), nil
}

func (r *roomRepo) Update(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[room.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *room
	cp.Game = nil
	cp.Players = nil
	cp.Owner = nil
	r.s.rooms[room.ID] = &cp
	return nil
}

func (r *roomRepo) SetInviteCode(_ context.Context, roomID uuid.UUID, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.inviteTakenLocked(code, roomID) {
		return repository.ErrDuplicate
	}
	room.InviteCode = &code
	return nil
}

func (r *roomRepo) inviteTakenLocked(code string, except uuid.UUID) bool {
	for _, room := range r.s.rooms {
		if room.ID != except && room.InviteCode != nil && *room.InviteCode == code {
			return true
		}
	}
	return false
}

func (r *roomRepo) playerCountLocked(roomID uuid.UUID) int {
	n := 0
	for _, p := range r.s.players {
		if p.RoomID == roomID {
			n++
		}
	}
	return n
}

// composeLocked returns a copy of the room with game and players attached,
// mirroring the preloads of the postgres implementation.
func (r *roomRepo) composeLocked(room *domain.Room) *domain.Room {
	cp := *room
	for _, g := range r.s.games {
		if g.RoomID == room.ID {
			gcp := *g
			cp.Game = &gcp
			break
		}
	}
	var players []domain.Player
	for _, p := range r.s.players {
		if p.RoomID == room.ID {
			pcp := *p
			if u, ok := r.s.users[p.UserID]; ok {
				ucp := *u
				pcp.User = &ucp
			}
			players = append(players, pcp)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	cp.Players = players
	return &cp
}

// games

type gameRepo struct{ s *Store }

func (r *gameRepo) Create(_ context.Context, game *domain.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *game
	r.s.games[game.ID] = &cp
	return nil
}

func (r *gameRepo) GetByRoomID(_ context.Context, roomID uuid.UUID) (*domain.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.games {
		if g.RoomID == roomID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *gameRepo) Update(_ context.Context, game *domain.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[game.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *game
	r.s.games[game.ID] = &cp
	return nil
}

// players

type playerRepo struct{ s *Store }

func (r *playerRepo) Create(_ context.Context, player *domain.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if p.RoomID == player.RoomID && p.UserID == player.UserID {
			return repository.ErrDuplicate
		}
	}
	cp := *player
	cp.User = nil
	r.s.players[player.ID] = &cp
	return nil
}

func (r *playerRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.composeLocked(p), nil
}

func (r *playerRepo) GetByRoomAndUser(_ context.Context, roomID, userID uuid.UUID) (*domain.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.players {
		if p.RoomID == roomID && p.UserID == userID {
			return r.composeLocked(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *playerRepo) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*domain.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var players []*domain.Player
	for _, p := range r.s.players {
		if p.RoomID == roomID {
			players = append(players, r.composeLocked(p))
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (r *playerRepo) Update(_ context.Context, player *domain.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[player.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *player
	cp.User = nil
	r.s.players[player.ID] = &cp
	return nil
}

func (r *playerRepo) composeLocked(p *domain.Player) *domain.Player {
	cp := *p
	if u, ok := r.s.users[p.UserID]; ok {
		ucp := *u
		cp.User = &ucp
	}
	return &cp
}

// game logs

type gameLogRepo struct{ s *Store }

func (r *gameLogRepo) Append(_ context.Context, entry *domain.GameLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.logs[entry.GameID] = append(r.s.logs[entry.GameID], &cp)
	return nil
}

func (r *gameLogRepo) Latest(_ context.Context, gameID uuid.UUID, logType string) (*domain.GameLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := r.s.logs[gameID]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type == logType {
			cp := *entries[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *gameLogRepo) ListByTypes(_ context.Context, gameID uuid.UUID, types []string, round int, notBefore time.Time) ([]*domain.GameLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	var out []*domain.GameLog
	for _, e := range r.s.logs[gameID] {
		if e.Round != round || !wanted[e.Type] || e.CreatedAt.Before(notBefore) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *gameLogRepo) Recent(_ context.Context, gameID uuid.UUID, since time.Time, limit int) ([]*domain.GameLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := r.s.logs[gameID]
	var out []*domain.GameLog
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		if entries[i].CreatedAt.Before(since) {
			continue
		}
		cp := *entries[i]
		out = append(out, &cp)
	}
	return out, nil
}
