package timer

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a timer.
// The numeric values are persisted and must not change.
type State uint8

const (
	// StateRunning indicates the timer is counting down.
	StateRunning State = iota + 1

	// StatePaused indicates the timer is stopped with time remaining.
	StatePaused

	// StateExpired indicates the timer reached zero and is ringing.
	StateExpired

	// StateReset indicates the timer is at its full length and idle.
	StateReset

	// StateMissed indicates the timer expired while it was not observed.
	StateMissed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateExpired:
		return "EXPIRED"
	case StateReset:
		return "RESET"
	case StateMissed:
		return "MISSED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s >= StateRunning && s <= StateMissed
}

// ParseState parses a state name as produced by String.
func ParseState(name string) (State, error) {
	for s := StateRunning; s <= StateMissed; s++ {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown timer state %q", name)
}

// expiryRank orders states for display: the most urgent state first.
func (s State) expiryRank() int {
	switch s {
	case StateMissed:
		return 0
	case StateExpired:
		return 1
	case StateRunning:
		return 2
	case StatePaused:
		return 3
	default:
		return 4
	}
}
