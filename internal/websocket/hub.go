package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dom/mafia-chicago/internal/cache"
	"github.com/dom/mafia-chicago/internal/service"
)

// Hub tracks connected clients and their room membership. Game state
// mutation happens in the service layer under per-room locks; the hub
// only fans results out to the room's connections.
type Hub struct {
	rooms      map[uuid.UUID]map[*Client]bool
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	services   *service.Services
	snapshots  *cache.SnapshotCache
	logger     *logrus.Logger
	mu         sync.RWMutex
}

func NewHub(services *service.Services, snapshots *cache.SnapshotCache, logger *logrus.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		services:   services,
		snapshots:  snapshots,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.rooms = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Stop gracefully shuts down the hub. It blocks until Run() has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	default:
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	var leftRoom *uuid.UUID
	var playerID uuid.UUID
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()

		if client.roomID != nil {
			if members, ok := h.rooms[*client.roomID]; ok {
				delete(members, client)
				if len(members) == 0 {
					delete(h.rooms, *client.roomID)
				}
			}
			leftRoom = client.roomID
			playerID = client.playerID
			client.roomID = nil
		}
	}
	h.mu.Unlock()

	if leftRoom != nil && playerID != uuid.Nil {
		msg, err := NewMessage(MessageTypePlayerDisconnected, PlayerDisconnectedPayload{PlayerID: playerID})
		if err == nil {
			h.BroadcastToRoom(*leftRoom, msg)
		}
	}
}

// JoinRoom seats the client in a room's broadcast group. The player must
// already be a member of the room (via the REST join flow).
func (h *Hub) JoinRoom(ctx context.Context, client *Client, roomID uuid.UUID) {
	player, err := h.services.Room.PlayerFor(ctx, roomID, client.externalID)
	if err != nil {
		client.sendError("ROOM_NOT_FOUND", "You are not a member of this room")
		return
	}

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	if client.roomID != nil {
		if members, ok := h.rooms[*client.roomID]; ok {
			delete(members, client)
		}
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[roomID] = members
	}
	members[client] = true
	client.roomID = &roomID
	client.playerID = player.ID
	h.mu.Unlock()

	joined, err := NewMessage(MessageTypePlayerJoined, PlayerJoinedPayload{
		PlayerID: player.ID,
		Name:     player.DisplayName(),
	})
	if err == nil {
		h.BroadcastToRoom(roomID, joined)
	}

	h.sendStateTo(ctx, client, roomID)
}

func (h *Hub) BroadcastToRoom(roomID uuid.UUID, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Warn("failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the frame rather than block the room.
		}
	}
}

// BroadcastState pushes a fresh game state snapshot to every client in the
// room and refreshes the snapshot cache.
func (h *Hub) BroadcastState(ctx context.Context, roomID uuid.UUID) {
	state, err := h.services.State.GetGameState(ctx, roomID)
	if err != nil {
		h.logger.WithError(err).WithField("room_id", roomID).Warn("failed to build game state")
		return
	}

	if h.snapshots != nil {
		if state.GameEnded {
			// A finished room gets no more updates; reconnects take the
			// fresh projection with the revealed roles.
			if err := h.snapshots.Invalidate(ctx, roomID); err != nil {
				h.logger.WithError(err).Debug("snapshot cache delete failed")
			}
		} else if err := h.snapshots.Set(ctx, state); err != nil {
			h.logger.WithError(err).Debug("snapshot cache write failed")
		}
	}

	msg, err := NewMessage(MessageTypeGameStateUpdate, state)
	if err != nil {
		h.logger.WithError(err).Warn("failed to encode game state")
		return
	}
	h.BroadcastToRoom(roomID, msg)
}

func (h *Hub) sendStateTo(ctx context.Context, client *Client, roomID uuid.UUID) {
	if h.snapshots != nil {
		if cached, err := h.snapshots.Get(ctx, roomID); err == nil && cached != nil {
			msg, err := NewMessage(MessageTypeGameStateUpdate, cached)
			if err == nil {
				client.Send(msg)
				return
			}
		}
	}

	state, err := h.services.State.GetGameState(ctx, roomID)
	if err != nil {
		h.logger.WithError(err).WithField("room_id", roomID).Warn("failed to build game state")
		return
	}
	msg, err := NewMessage(MessageTypeGameStateUpdate, state)
	if err != nil {
		return
	}
	client.Send(msg)
}

func (h *Hub) BroadcastPhase(roomID uuid.UUID, phase string) {
	msg, err := NewMessage(MessageTypePhaseChanged, PhaseChangedPayload{
		Phase:     phase,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}
	h.BroadcastToRoom(roomID, msg)
}

func (h *Hub) BroadcastSystemMessage(roomID uuid.UUID, text string) {
	msg, err := NewMessage(MessageTypeSystemMessage, SystemMessagePayload{
		Text:      text,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}
	h.BroadcastToRoom(roomID, msg)
}
