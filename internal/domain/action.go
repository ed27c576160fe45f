package domain

import "strings"

// ActionKind is the closed set of night actions. The original logged actions
// under free-form "ROLE_ACTION_<ACTION>" tags; the kind set replaces that
// string dispatch with parse-time validation.
type ActionKind string

const (
	ActionKill   ActionKind = "KILL"
	ActionHeal   ActionKind = "HEAL"
	ActionArrest ActionKind = "ARREST"
	ActionSkip   ActionKind = "SKIP"
)

const roleActionPrefix = "ROLE_ACTION_"

// ParseActionKind normalizes and validates a submitted action tag.
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(strings.ToUpper(s)) {
	case ActionKill:
		return ActionKill, nil
	case ActionHeal:
		return ActionHeal, nil
	case ActionArrest:
		return ActionArrest, nil
	case ActionSkip:
		return ActionSkip, nil
	}
	return "", ErrInvalidActionKind
}

// LogType returns the event-log type tag for the kind.
func (k ActionKind) LogType() string {
	return roleActionPrefix + string(k)
}

// NightActionLogTypes are the log types scanned during night resolution.
func NightActionLogTypes() []string {
	return []string{
		ActionKill.LogType(),
		ActionHeal.LogType(),
		ActionArrest.LogType(),
		ActionSkip.LogType(),
	}
}
