package domain

import "github.com/google/uuid"

type Winner string

const (
	WinnerMafia     Winner = "MAFIA"
	WinnerCivilians Winner = "CIVILIANS"
)

// PlayerView is a player as shown to clients. Role is withheld until the room
// is finished.
type PlayerView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Role         *Role     `json:"role,omitempty"`
	IsAlive      bool      `json:"isAlive"`
	RoleRevealed bool      `json:"roleRevealed"`
}

// GameState is the full snapshot broadcast to every socket in a room.
type GameState struct {
	RoomID      uuid.UUID    `json:"roomId"`
	RoomStatus  RoomStatus   `json:"roomStatus"`
	Phase       Phase        `json:"phase"`
	Round       int          `json:"round"`
	Players     []PlayerView `json:"players"`
	Logs        []*GameLog   `json:"logs"`
	GameStarted bool         `json:"gameStarted"`
	GameEnded   bool         `json:"gameEnded"`
}

// ActionResult identifies a player affected by night resolution.
type ActionResult struct {
	PlayerID   uuid.UUID `json:"playerId"`
	PlayerName string    `json:"playerName"`
}

// NightResult summarizes one night's resolution.
type NightResult struct {
	Killed   []ActionResult `json:"killed"`
	Saved    []ActionResult `json:"saved"`
	Arrested []ActionResult `json:"arrested"`
}

// VoteResult summarizes one day vote's resolution. Executed is nil when no
// votes were cast. NextPhase is the phase the room advanced into.
type VoteResult struct {
	Executed   *ExecutionPayload `json:"executed"`
	VoteCounts map[uuid.UUID]int `json:"voteCounts"`
	NextPhase  Phase             `json:"nextPhase"`
}

// VictoryResult is the outcome of a victory evaluation.
type VictoryResult struct {
	GameOver       bool   `json:"gameOver"`
	Winner         Winner `json:"winner,omitempty"`
	AliveMafia     int    `json:"aliveMafia"`
	AliveCivilians int    `json:"aliveCivilians"`
}
