package domain

import "errors"

// Not-found errors
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTargetNotFound = errors.New("target player not found")
)

// Invalid-state errors
var (
	ErrRoomFull            = errors.New("room is full")
	ErrRoomNotWaiting      = errors.New("room is not in waiting status")
	ErrRoomNotActive       = errors.New("room is not active")
	ErrInsufficientPlayers = errors.New("need exactly 8 players to start the game")
)

// Forbidden / invalid-input errors
var (
	ErrDeadPlayerAction  = errors.New("dead players cannot act")
	ErrInvalidGiftType   = errors.New("invalid gift type")
	ErrInvalidActionKind = errors.New("invalid action")
)
