package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCivilian Role = "CIVILIAN"
	RoleMafia    Role = "MAFIA"
	RoleDoctor   Role = "DOCTOR"
	RoleSheriff  Role = "SHERIFF"
)

// User is the stable cross-room identity behind a player seat. It is created on
// first join, keyed by the external id the platform authenticated upstream.
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ExternalID  string    `json:"externalId" gorm:"uniqueIndex;size:64;not null"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}

// Player is one seat in one room. Rows are never deleted; dead players stay on
// the roster for the post-game role reveal.
type Player struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_players_room_user,unique,priority:2"`
	RoomID   uuid.UUID `json:"roomId" gorm:"type:uuid;not null;index:idx_players_room_user,unique,priority:1"`
	GameID   uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	Role     Role      `json:"role" gorm:"type:varchar(20);not null;default:'CIVILIAN'"`
	IsAlive  bool      `json:"isAlive" gorm:"not null;default:true"`
	Location *string   `json:"location" gorm:"size:64"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Player) TableName() string {
	return "players"
}

// DisplayName is the seat's visible name, falling back to the player id when
// the user relation was not loaded.
func (p *Player) DisplayName() string {
	if p.User != nil {
		return p.User.DisplayName
	}
	return p.ID.String()
}
