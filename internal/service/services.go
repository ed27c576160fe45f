package service

import (
	"time"

	"github.com/dom/mafia-chicago/internal/repository"
)

// StaleActionWindow is an upper bound on how old a log entry may be and still
// count toward the current round. Rounds are the real scoping mechanism; the
// window only keeps a round that was left open for hours from resurrecting
// ancient actions.
const StaleActionWindow = 10 * time.Minute

type Services struct {
	Room    *RoomService
	Phase   *PhaseService
	Night   *NightService
	Vote    *VoteService
	Victory *VictoryService
	Gift    *GiftService
	State   *StateService
}

func NewServices(repos *repository.Repositories) *Services {
	locks := NewLockKeeper()
	phase := NewPhaseService(repos.Room, repos.Game, repos.GameLog, locks)
	return &Services{
		Room:    NewRoomService(repos.User, repos.Room, repos.Game, repos.Player, repos.GameLog, locks),
		Phase:   phase,
		Night:   NewNightService(repos.Room, repos.Player, repos.GameLog, phase, locks),
		Vote:    NewVoteService(repos.Room, repos.Player, repos.GameLog, phase, locks),
		Victory: NewVictoryService(repos.Room, repos.Game, repos.GameLog, locks),
		Gift:    NewGiftService(repos.Player, repos.Game, repos.GameLog),
		State:   NewStateService(repos.Room, repos.GameLog),
	}
}
