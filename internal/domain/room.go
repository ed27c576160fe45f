package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "WAITING"
	RoomStatusActive   RoomStatus = "ACTIVE"
	RoomStatusFinished RoomStatus = "FINISHED"
)

// MaxRoomPlayers is the fixed seat count; a game starts with exactly this many players.
const MaxRoomPlayers = 8

// DefaultRoomName is used for every auto-created matchmaking room.
const DefaultRoomName = "Mafia: Chicago"

type Room struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name       string     `json:"name" gorm:"not null"`
	Status     RoomStatus `json:"status" gorm:"type:varchar(20);not null;default:'WAITING'"`
	InviteCode *string    `json:"inviteCode" gorm:"uniqueIndex;size:16"`
	OwnerID    uuid.UUID  `json:"ownerId" gorm:"type:uuid;not null"`
	CreatedAt  time.Time  `json:"createdAt"`

	// Relations
	Owner   *User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Game    *Game    `json:"game,omitempty" gorm:"foreignKey:RoomID"`
	Players []Player `json:"players,omitempty" gorm:"foreignKey:RoomID"`
}

func (Room) TableName() string {
	return "rooms"
}

// IsFull returns true once all seats are taken.
func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxRoomPlayers
}

// PlayerForUser returns the seat already held by the user, if any.
func (r *Room) PlayerForUser(userID uuid.UUID) *Player {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

type Game struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RoomID    uuid.UUID  `json:"roomId" gorm:"type:uuid;not null;uniqueIndex"`
	Round     int        `json:"round" gorm:"not null;default:0"`
	StartedAt *time.Time `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Game) TableName() string {
	return "games"
}
