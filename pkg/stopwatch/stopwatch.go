// Package stopwatch provides the immutable stopwatch and lap values.
//
// Like timers, a stopwatch measures time on the monotonic clock and keeps a
// wall-clock anchor so it can be repaired after a reboot or a time change.
package stopwatch

import (
	"math"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// State is the lifecycle state of the stopwatch.
// The numeric values are persisted and must not change.
type State uint8

const (
	// StateReset indicates the stopwatch is at zero.
	StateReset State = iota

	// StateRunning indicates the stopwatch is accumulating time.
	StateRunning

	// StatePaused indicates the stopwatch is stopped with time accumulated.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateReset:
		return "RESET"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// Unused marks a monotonic timestamp that does not apply in the current state.
const Unused = time.Duration(math.MinInt64)

// Stopwatch is an immutable stopwatch snapshot.
type Stopwatch struct {
	state         State
	lastStartTime time.Duration
	lastWallClock time.Time
	accumulated   time.Duration
}

// Zero is the canonical RESET stopwatch.
var Zero = Stopwatch{state: StateReset, lastStartTime: Unused}

// Restore rebuilds a stopwatch from persisted fields.
func Restore(state State, lastStartTime time.Duration, lastWallClock time.Time, accumulated time.Duration) Stopwatch {
	switch state {
	case StateRunning:
		return Stopwatch{
			state:         StateRunning,
			lastStartTime: lastStartTime,
			lastWallClock: lastWallClock.Round(0),
			accumulated:   accumulated,
		}
	case StatePaused:
		return Stopwatch{state: StatePaused, lastStartTime: Unused, accumulated: accumulated}
	default:
		return Zero
	}
}

func (s Stopwatch) State() State                   { return s.state }
func (s Stopwatch) LastStartTime() time.Duration   { return s.lastStartTime }
func (s Stopwatch) LastWallClockTime() time.Time   { return s.lastWallClock }
func (s Stopwatch) AccumulatedTime() time.Duration { return s.accumulated }

func (s Stopwatch) IsRunning() bool { return s.state == StateRunning }
func (s Stopwatch) IsPaused() bool  { return s.state == StatePaused }
func (s Stopwatch) IsReset() bool   { return s.state == StateReset }

// TotalTime returns the time accumulated so far.
func (s Stopwatch) TotalTime(c clock.Clock) time.Duration {
	if s.state != StateRunning {
		return s.accumulated
	}
	return s.accumulated + max(0, c.Elapsed()-s.lastStartTime)
}

// Start moves the stopwatch to RUNNING.
func (s Stopwatch) Start(c clock.Clock) Stopwatch {
	if s.state == StateRunning {
		return s
	}
	return Stopwatch{
		state:         StateRunning,
		lastStartTime: c.Elapsed(),
		lastWallClock: c.Now(),
		accumulated:   s.accumulated,
	}
}

// Pause moves a running stopwatch to PAUSED.
func (s Stopwatch) Pause(c clock.Clock) Stopwatch {
	if s.state != StateRunning {
		return s
	}
	return Stopwatch{
		state:         StatePaused,
		lastStartTime: Unused,
		accumulated:   s.TotalTime(c),
	}
}

// Reset returns the canonical RESET stopwatch.
func (s Stopwatch) Reset() Stopwatch {
	return Zero
}

// UpdateAfterReboot charges the wall-clock time since the last start to a
// running stopwatch and re-anchors it on the new monotonic epoch. A negative
// wall-clock delta counts as zero.
func (s Stopwatch) UpdateAfterReboot(c clock.Clock) Stopwatch {
	if s.state != StateRunning {
		return s
	}
	wall := c.Now()
	delta := max(0, wall.Sub(s.lastWallClock))
	return Stopwatch{
		state:         StateRunning,
		lastStartTime: c.Elapsed(),
		lastWallClock: wall,
		accumulated:   s.accumulated + delta,
	}
}

// UpdateAfterTimeSet folds the monotonic time since the last start into the
// accumulated time and re-anchors the wall clock. A negative monotonic delta
// discards the update.
func (s Stopwatch) UpdateAfterTimeSet(c clock.Clock) Stopwatch {
	if s.state != StateRunning {
		return s
	}
	now := c.Elapsed()
	delta := now - s.lastStartTime
	if delta < 0 {
		return s
	}
	return Stopwatch{
		state:         StateRunning,
		lastStartTime: now,
		lastWallClock: c.Now(),
		accumulated:   s.accumulated + delta,
	}
}

// Equal reports whether two stopwatches hold identical values.
func (s Stopwatch) Equal(o Stopwatch) bool {
	return s.state == o.state &&
		s.lastStartTime == o.lastStartTime &&
		s.lastWallClock.Equal(o.lastWallClock) &&
		s.accumulated == o.accumulated
}
