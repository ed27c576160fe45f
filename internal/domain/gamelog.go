package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Log entry types. The per-kind night action types keep the ROLE_ACTION_
// prefix so log consumers written against the original tags still match.
const (
	LogTypeGameStarted      = "GAME_STARTED"
	LogTypeGameEnded        = "GAME_ENDED"
	LogTypeGameOver         = "GAME_OVER"
	LogTypePhaseChange      = "PHASE_CHANGE"
	LogTypeLocationSelected = "LOCATION_SELECTED"
	LogTypeNightResult      = "NIGHT_RESULT"
	LogTypePlayerArrested   = "PLAYER_ARRESTED"
	LogTypeVote             = "VOTE"
	LogTypeExecution        = "EXECUTION"
	LogTypeGift             = "GIFT"
)

// GameLog is one entry in the append-only game event log. Round scopes the
// entry to the night/day cycle it was submitted in; resolvers select by exact
// (game, round) match rather than a trailing time window.
type GameLog struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID    uuid.UUID      `json:"gameId" gorm:"type:uuid;not null;index:idx_game_logs_game_type,priority:1"`
	Round     int            `json:"round" gorm:"not null;default:0;index"`
	Type      string         `json:"type" gorm:"size:64;not null;index:idx_game_logs_game_type,priority:2"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (GameLog) TableName() string {
	return "game_logs"
}

// NewGameLog marshals payload into a log entry for the given game and round.
func NewGameLog(gameID uuid.UUID, round int, logType string, payload any) (*GameLog, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &GameLog{
		ID:        uuid.New(),
		GameID:    gameID,
		Round:     round,
		Type:      logType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}, nil
}

// DecodePayload unmarshals the entry payload into out.
func (l *GameLog) DecodePayload(out any) error {
	return json.Unmarshal(l.Payload, out)
}

// PhaseChangePayload records a phase transition.
type PhaseChangePayload struct {
	Phase         Phase `json:"phase"`
	PreviousPhase Phase `json:"previousPhase"`
	Round         int   `json:"round"`
}

// NightActionPayload is the payload of a ROLE_ACTION_* entry.
type NightActionPayload struct {
	PlayerID   uuid.UUID `json:"playerId"`
	TargetID   uuid.UUID `json:"targetId"`
	PlayerName string    `json:"playerName"`
	TargetName string    `json:"targetName"`
	Role       Role      `json:"role"`
	Location   string    `json:"location"`
}

// VotePayload is the payload of a VOTE entry.
type VotePayload struct {
	VoterID    uuid.UUID `json:"voterId"`
	TargetID   uuid.UUID `json:"targetId"`
	VoterName  string    `json:"voterName"`
	TargetName string    `json:"targetName"`
}

// ExecutionPayload records the player removed by the day vote.
type ExecutionPayload struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Votes      int       `json:"votes"`
}

// ArrestPayload is the payload of a PLAYER_ARRESTED entry.
type ArrestPayload struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
}

// LocationSelectedPayload records a night location pick.
type LocationSelectedPayload struct {
	PlayerID   uuid.UUID `json:"playerId"`
	LocationID string    `json:"locationId"`
}

// GiftPayload is the payload of a GIFT entry.
type GiftPayload struct {
	SenderID      uuid.UUID `json:"senderId"`
	RecipientID   uuid.UUID `json:"recipientId"`
	SenderName    string    `json:"senderName"`
	RecipientName string    `json:"recipientName"`
	GiftType      GiftType  `json:"giftType"`
}

// GameOverPayload records the winner and the surviving players.
type GameOverPayload struct {
	Winner       Winner      `json:"winner"`
	AlivePlayers []uuid.UUID `json:"alivePlayers"`
}
