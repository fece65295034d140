package timer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// Sort selects the secondary ordering of RESET timers.
type Sort uint8

const (
	// SortDurationAscending orders reset timers shortest first.
	SortDurationAscending Sort = iota

	// SortDurationDescending orders reset timers longest first.
	SortDurationDescending

	// SortLabel orders reset timers alphabetically by label.
	SortLabel
)

// String returns the configuration name of the sort order.
func (s Sort) String() string {
	switch s {
	case SortDurationAscending:
		return "duration-asc"
	case SortDurationDescending:
		return "duration-desc"
	case SortLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ParseSort parses a sort order name as produced by String.
func ParseSort(name string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "duration-asc":
		return SortDurationAscending, nil
	case "duration-desc":
		return SortDurationDescending, nil
	case "label":
		return SortLabel, nil
	default:
		return 0, fmt.Errorf("unknown timer sort %q", name)
	}
}

// ExpiryOrder returns a comparator ordering timers by urgency:
// MISSED, EXPIRED, RUNNING, PAUSED, RESET. Within a state, non-reset timers
// are ordered by remaining time and reset timers by sortBy. Ties fall back
// to the timer id so the order is deterministic.
func ExpiryOrder(sortBy Sort, c clock.Clock) func(a, b Timer) int {
	return func(a, b Timer) int {
		if r := cmp.Compare(a.state.expiryRank(), b.state.expiryRank()); r != 0 {
			return r
		}

		var r int
		if a.state == StateReset {
			r = compareReset(sortBy, a, b)
		} else {
			r = cmp.Compare(a.RemainingTime(c), b.RemainingTime(c))
		}
		if r != 0 {
			return r
		}
		return cmp.Compare(a.id, b.id)
	}
}

func compareReset(sortBy Sort, a, b Timer) int {
	switch sortBy {
	case SortDurationDescending:
		return cmp.Compare(b.length, a.length)
	case SortLabel:
		return cmp.Compare(strings.ToLower(a.label), strings.ToLower(b.label))
	default:
		return cmp.Compare(a.length, b.length)
	}
}

// SortTimers sorts ts in place using ExpiryOrder.
func SortTimers(ts []Timer, sortBy Sort, c clock.Clock) {
	slices.SortStableFunc(ts, ExpiryOrder(sortBy, c))
}
