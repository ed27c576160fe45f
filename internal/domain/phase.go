package domain

type Phase string

const (
	PhaseWaitingForPlayers      Phase = "WAITING_FOR_PLAYERS"
	PhaseNightLocationSelection Phase = "NIGHT_LOCATION_SELECTION"
	PhaseNightRoleActions       Phase = "NIGHT_ROLE_ACTIONS"
	PhaseMorning                Phase = "MORNING"
	PhaseDiscussion             Phase = "DISCUSSION"
	PhaseVoting                 Phase = "VOTING"
	PhaseDeath                  Phase = "DEATH"
)

// PhaseCycle is the fixed phase order. The cycle wraps from DEATH back to
// NIGHT_LOCATION_SELECTION; WAITING_FOR_PLAYERS is only ever the entry state.
var PhaseCycle = []Phase{
	PhaseWaitingForPlayers,
	PhaseNightLocationSelection,
	PhaseNightRoleActions,
	PhaseMorning,
	PhaseDiscussion,
	PhaseVoting,
	PhaseDeath,
}

// NextPhase returns the phase following current in the cycle. Once a room is
// active the cycle never returns to WAITING_FOR_PLAYERS.
func NextPhase(current Phase, roomActive bool) Phase {
	if current == PhaseWaitingForPlayers && roomActive {
		return PhaseNightLocationSelection
	}
	next := 0
	for i, p := range PhaseCycle {
		if p == current {
			next = i + 1
			break
		}
	}
	if next >= len(PhaseCycle) || next == 0 {
		return PhaseNightLocationSelection
	}
	return PhaseCycle[next]
}

// BeginsNewRound reports whether a transition into next starts a fresh round,
// which scopes night actions and votes.
func BeginsNewRound(next Phase) bool {
	return next == PhaseNightLocationSelection
}
