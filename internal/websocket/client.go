package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dom/mafia-chicago/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	roomID     *uuid.UUID
	playerID   uuid.UUID
	externalID string
	closed     bool
}

func NewClient(hub *Hub, conn *websocket.Conn, externalID string) *Client {
	c := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		externalID: externalID,
	}
	return c
}

// Close releases the send channel. The hub calls this exactly once while
// holding its lock.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Debug("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.WithError(err).Debug("failed to unmarshal message")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	ctx := context.Background()

	switch msg.Type {
	case MessageTypeJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid join room payload")
			return
		}
		c.hub.JoinRoom(ctx, c, payload.RoomID)

	case MessageTypeSelectLocation:
		var payload SelectLocationPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid select location payload")
			return
		}
		if c.roomID == nil {
			c.sendError("NOT_IN_ROOM", "Join a room first")
			return
		}
		if err := c.hub.services.Night.SelectLocation(ctx, c.playerID, payload.LocationID); err != nil {
			c.sendServiceError(err)
			return
		}
		c.hub.BroadcastState(ctx, *c.roomID)

	case MessageTypeSubmitAction:
		var payload SubmitActionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid action payload")
			return
		}
		if c.roomID == nil {
			c.sendError("NOT_IN_ROOM", "Join a room first")
			return
		}
		kind, err := domain.ParseActionKind(payload.Action)
		if err != nil {
			c.sendServiceError(err)
			return
		}
		targetID := c.playerID
		if payload.TargetID != nil {
			targetID = *payload.TargetID
		}
		if err := c.hub.services.Night.SubmitAction(ctx, c.playerID, targetID, kind, ""); err != nil {
			c.sendServiceError(err)
			return
		}
		c.hub.BroadcastState(ctx, *c.roomID)

	case MessageTypeVote:
		var payload VotePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid vote payload")
			return
		}
		if c.roomID == nil {
			c.sendError("NOT_IN_ROOM", "Join a room first")
			return
		}
		c.handleVote(ctx, payload.TargetID)

	case MessageTypeSendGift:
		var payload SendGiftPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid gift payload")
			return
		}
		if c.roomID == nil {
			c.sendError("NOT_IN_ROOM", "Join a room first")
			return
		}
		gift, err := c.hub.services.Gift.Send(ctx, c.playerID, payload.ReceiverID, payload.GiftType)
		if err != nil {
			c.sendServiceError(err)
			return
		}
		if out, err := NewMessage(MessageTypeGiftSent, gift); err == nil {
			c.hub.BroadcastToRoom(*c.roomID, out)
		}
		c.hub.BroadcastState(ctx, *c.roomID)

	case MessageTypeStartGame:
		if c.roomID == nil {
			c.sendError("NOT_IN_ROOM", "Join a room first")
			return
		}
		roomID := *c.roomID
		if err := c.hub.services.Room.Start(ctx, roomID); err != nil {
			c.sendServiceError(err)
			return
		}
		if out, err := NewMessage(MessageTypeGameStarted, map[string]string{"roomId": roomID.String()}); err == nil {
			c.hub.BroadcastToRoom(roomID, out)
		}
		c.hub.BroadcastState(ctx, roomID)
	}
}

// handleVote records the ballot and, when every living player has voted,
// resolves the vote and checks the victory condition in the same pass.
func (c *Client) handleVote(ctx context.Context, targetID uuid.UUID) {
	roomID := *c.roomID

	if err := c.hub.services.Vote.Submit(ctx, c.playerID, targetID); err != nil {
		c.sendServiceError(err)
		return
	}

	result, err := c.hub.services.Vote.ResolveIfAllVoted(ctx, roomID)
	if err != nil {
		c.sendServiceError(err)
		return
	}
	if result != nil {
		c.hub.BroadcastPhase(roomID, string(result.NextPhase))
		if result.Executed != nil {
			c.hub.BroadcastSystemMessage(roomID, result.Executed.PlayerName+" was executed by the town")
		}
		if victory, err := c.hub.services.Victory.Check(ctx, roomID); err == nil && victory.GameOver {
			c.hub.BroadcastSystemMessage(roomID, "Game over: "+string(victory.Winner)+" win")
		}
	}
	c.hub.BroadcastState(ctx, roomID)
}

func (c *Client) sendServiceError(err error) {
	switch {
	case errors.Is(err, domain.ErrDeadPlayerAction):
		c.sendError("DEAD_PLAYER", err.Error())
	case errors.Is(err, domain.ErrRoomNotActive), errors.Is(err, domain.ErrRoomNotWaiting):
		c.sendError("WRONG_PHASE", err.Error())
	case errors.Is(err, domain.ErrInvalidActionKind), errors.Is(err, domain.ErrInvalidGiftType):
		c.sendError("INVALID_PAYLOAD", err.Error())
	case errors.Is(err, domain.ErrInsufficientPlayers):
		c.sendError("NOT_ENOUGH_PLAYERS", err.Error())
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrTargetNotFound),
		errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrGameNotFound):
		c.sendError("NOT_FOUND", err.Error())
	default:
		c.hub.logger.WithError(err).Warn("websocket intent failed")
		c.sendError("INTERNAL", "Something went wrong")
	}
}

func (c *Client) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	if err != nil {
		return
	}
	c.Send(msg)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.WithError(err).Warn("failed to marshal message")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
