package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

// Wire event names match what the front-end already listens for.
const (
	// Client to Server
	MessageTypeJoinRoom       MessageType = "joinRoom"
	MessageTypeSelectLocation MessageType = "selectLocation"
	MessageTypeSubmitAction   MessageType = "submitAction"
	MessageTypeVote           MessageType = "vote"
	MessageTypeSendGift       MessageType = "sendGift"
	MessageTypeStartGame      MessageType = "startGame"

	// Server to Client
	MessageTypeGameStateUpdate    MessageType = "gameStateUpdate"
	MessageTypePlayerJoined       MessageType = "playerJoined"
	MessageTypePlayerDisconnected MessageType = "playerDisconnected"
	MessageTypePhaseChanged       MessageType = "phaseChanged"
	MessageTypeGameStarted        MessageType = "gameStarted"
	MessageTypeGiftSent           MessageType = "giftSent"
	MessageTypeSystemMessage      MessageType = "systemMessage"
	MessageTypeError              MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinRoomPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

type SelectLocationPayload struct {
	LocationID string `json:"locationId"`
}

type SubmitActionPayload struct {
	Action   string     `json:"action"`
	TargetID *uuid.UUID `json:"targetId,omitempty"`
}

type VotePayload struct {
	TargetID uuid.UUID `json:"targetId"`
}

type SendGiftPayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	GiftType   string    `json:"giftType"`
}

// Server to Client payloads

type PlayerJoinedPayload struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
}

type PlayerDisconnectedPayload struct {
	PlayerID uuid.UUID `json:"playerId"`
}

type PhaseChangedPayload struct {
	Phase     string    `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}

type SystemMessagePayload struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
