package timer

import (
	"errors"
	"math"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// Timer limits.
const (
	// MinLength is the shortest timer that can be created.
	MinLength = 1 * time.Second

	// MaxLength is the longest timer that can be created (99:59:59).
	MaxLength = 99*time.Hour + 59*time.Minute + 59*time.Second

	// DefaultButtonTime is the quick-add increment for new timers.
	DefaultButtonTime = 1 * time.Minute

	// Unused marks a monotonic timestamp that does not apply in the
	// current state.
	Unused = time.Duration(math.MinInt64)
)

// ErrInvalidLength is returned for lengths outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("invalid timer length")

// ValidateLength checks that length can be used for a timer.
func ValidateLength(length time.Duration) error {
	if length < MinLength || length > MaxLength {
		return ErrInvalidLength
	}
	return nil
}

// Timer is an immutable countdown timer snapshot.
type Timer struct {
	id             int
	state          State
	length         time.Duration
	totalLength    time.Duration
	lastStartTime  time.Duration
	lastWallClock  time.Time
	remainingTime  time.Duration
	label          string
	buttonTime     time.Duration
	deleteAfterUse bool
}

// Fields is the exported form of a Timer, used to persist and restore it.
type Fields struct {
	ID                int
	State             State
	Length            time.Duration
	TotalLength       time.Duration
	LastStartTime     time.Duration
	LastWallClockTime time.Time
	RemainingTime     time.Duration
	Label             string
	ButtonTime        time.Duration
	DeleteAfterUse    bool
}

// New returns a RESET timer of the given length.
func New(id int, length time.Duration, label string, buttonTime time.Duration, deleteAfterUse bool) Timer {
	return Timer{
		id:             id,
		state:          StateReset,
		length:         length,
		totalLength:    length,
		lastStartTime:  Unused,
		remainingTime:  length,
		label:          label,
		buttonTime:     buttonTime,
		deleteAfterUse: deleteAfterUse,
	}
}

// Restore rebuilds a timer from persisted fields.
func Restore(f Fields) Timer {
	t := Timer{
		id:             f.ID,
		state:          f.State,
		length:         f.Length,
		totalLength:    f.TotalLength,
		lastStartTime:  f.LastStartTime,
		lastWallClock:  f.LastWallClockTime.Round(0),
		remainingTime:  f.RemainingTime,
		label:          f.Label,
		buttonTime:     f.ButtonTime,
		deleteAfterUse: f.DeleteAfterUse,
	}
	if !t.state.Valid() {
		t.state = StateReset
	}
	if t.state == StateReset || t.state == StatePaused {
		t.lastStartTime = Unused
		t.lastWallClock = time.Time{}
	}
	return t
}

// Fields returns the exported form of t.
func (t Timer) Fields() Fields {
	return Fields{
		ID:                t.id,
		State:             t.state,
		Length:            t.length,
		TotalLength:       t.totalLength,
		LastStartTime:     t.lastStartTime,
		LastWallClockTime: t.lastWallClock,
		RemainingTime:     t.remainingTime,
		Label:             t.label,
		ButtonTime:        t.buttonTime,
		DeleteAfterUse:    t.deleteAfterUse,
	}
}

func (t Timer) ID() int                      { return t.id }
func (t Timer) State() State                 { return t.state }
func (t Timer) Length() time.Duration        { return t.length }
func (t Timer) TotalLength() time.Duration   { return t.totalLength }
func (t Timer) LastStartTime() time.Duration { return t.lastStartTime }
func (t Timer) LastWallClockTime() time.Time { return t.lastWallClock }
func (t Timer) Label() string                { return t.label }
func (t Timer) ButtonTime() time.Duration    { return t.buttonTime }
func (t Timer) DeleteAfterUse() bool         { return t.deleteAfterUse }

func (t Timer) IsRunning() bool { return t.state == StateRunning }
func (t Timer) IsPaused() bool  { return t.state == StatePaused }
func (t Timer) IsExpired() bool { return t.state == StateExpired }
func (t Timer) IsMissed() bool  { return t.state == StateMissed }
func (t Timer) IsReset() bool   { return t.state == StateReset }

// IsExpiredOrMissed reports whether the timer has run out.
func (t Timer) IsExpiredOrMissed() bool {
	return t.state == StateExpired || t.state == StateMissed
}

// StoredRemainingTime returns the remaining time as stored, without
// accounting for time elapsed since LastStartTime.
func (t Timer) StoredRemainingTime() time.Duration {
	return t.remainingTime
}

// RemainingTime returns the live remaining time. It is negative for
// timers that are overdue.
func (t Timer) RemainingTime(c clock.Clock) time.Duration {
	if t.state == StatePaused || t.state == StateReset {
		return t.remainingTime
	}
	// A clock anomaly can make the start time appear to be in the future;
	// that must never add time back.
	sinceStart := c.Elapsed() - t.lastStartTime
	return t.remainingTime - max(0, sinceStart)
}

// ElapsedTime returns how much of the total length has been consumed.
func (t Timer) ElapsedTime(c clock.Clock) time.Duration {
	return t.totalLength - t.RemainingTime(c)
}

// ExpirationTime returns the monotonic instant at which the remaining time
// reaches zero. It is only meaningful for RUNNING, EXPIRED and MISSED timers.
func (t Timer) ExpirationTime() time.Duration {
	return t.lastStartTime + t.remainingTime
}

// WallClockExpirationTime returns the wall-clock instant matching
// ExpirationTime.
func (t Timer) WallClockExpirationTime() time.Time {
	return t.lastWallClock.Add(t.remainingTime)
}

// Start moves a RESET or PAUSED timer to RUNNING.
func (t Timer) Start(c clock.Clock) Timer {
	if t.state == StateRunning || t.state == StateExpired || t.state == StateMissed {
		return t
	}
	n := t
	n.state = StateRunning
	n.lastStartTime = c.Elapsed()
	n.lastWallClock = c.Now()
	return n
}

// Pause moves a RUNNING timer to PAUSED, capturing its remaining time.
// Pausing an EXPIRED or MISSED timer resets it.
func (t Timer) Pause(c clock.Clock) Timer {
	switch t.state {
	case StatePaused, StateReset:
		return t
	case StateExpired, StateMissed:
		return t.Reset()
	}
	n := t
	n.state = StatePaused
	n.remainingTime = t.RemainingTime(c)
	n.lastStartTime = Unused
	n.lastWallClock = time.Time{}
	return n
}

// Expire moves the timer to EXPIRED.
func (t Timer) Expire(c clock.Clock) Timer {
	if t.state == StateExpired || t.state == StateReset || t.state == StateMissed {
		return t
	}
	return t.terminate(c, StateExpired)
}

// Miss moves the timer to MISSED. It applies to running timers found
// overdue after a reboot, and to expired timers whose ringing was silenced.
func (t Timer) Miss(c clock.Clock) Timer {
	if t.state == StateReset || t.state == StateMissed {
		return t
	}
	return t.terminate(c, StateMissed)
}

func (t Timer) terminate(c clock.Clock, state State) Timer {
	n := t
	n.state = state
	n.remainingTime = min(0, t.RemainingTime(c))
	n.totalLength = 0
	n.lastStartTime = c.Elapsed()
	n.lastWallClock = c.Now()
	return n
}

// Reset returns the canonical RESET value of the timer.
func (t Timer) Reset() Timer {
	if t.state == StateReset {
		return t
	}
	return New(t.id, t.length, t.label, t.buttonTime, t.deleteAfterUse)
}

// SetRemainingTime adjusts the remaining time, shifting the total length by
// the same delta. An EXPIRED or MISSED timer given a positive remaining time
// starts running again.
func (t Timer) SetRemainingTime(c clock.Clock, remaining time.Duration) Timer {
	if t.state == StateReset || remaining == t.remainingTime {
		return t
	}

	n := t
	n.totalLength = t.totalLength + (remaining - t.remainingTime)
	n.remainingTime = remaining
	if t.IsExpiredOrMissed() && remaining > 0 {
		n.state = StateRunning
		n.lastStartTime = c.Elapsed()
		n.lastWallClock = c.Now()
	}
	return n
}

// AddCustomTime adds the timer's button time. An EXPIRED or MISSED timer
// restarts with exactly the button time.
func (t Timer) AddCustomTime(c clock.Clock) Timer {
	if t.IsExpiredOrMissed() {
		return t.SetRemainingTime(c, t.buttonTime)
	}
	return t.SetRemainingTime(c, t.remainingTime+t.buttonTime)
}

// UpdateAfterReboot recomputes a running timer after the monotonic origin
// moved. The wall-clock time elapsed since the last start is charged
// against the remaining time; a negative delta (wall clock behind the
// recorded start) is treated as zero.
func (t Timer) UpdateAfterReboot(c clock.Clock) Timer {
	if t.state == StateReset || t.state == StatePaused {
		return t
	}
	now := c.Elapsed()
	wall := c.Now()
	delta := max(0, wall.Sub(t.lastWallClock))

	n := t
	n.lastStartTime = now
	n.lastWallClock = wall
	n.remainingTime = t.remainingTime - delta
	return n
}

// UpdateAfterTimeSet recomputes a running timer after the wall clock was
// changed. The monotonic time elapsed since the last start is folded into
// the remaining time. If that delta is negative the update is discarded and
// the timer is left for the next reboot fixup to correct.
func (t Timer) UpdateAfterTimeSet(c clock.Clock) Timer {
	if t.state == StateReset || t.state == StatePaused {
		return t
	}
	now := c.Elapsed()
	wall := c.Now()
	delta := now - t.lastStartTime
	if delta < 0 {
		return t
	}

	n := t
	n.lastStartTime = now
	n.lastWallClock = wall
	n.remainingTime = t.remainingTime - delta
	return n
}

// SetLabel changes the label.
func (t Timer) SetLabel(label string) Timer {
	if t.label == label {
		return t
	}
	n := t
	n.label = label
	return n
}

// SetLength changes the configured length. Lengths below MinLength are
// ignored. A RESET timer adopts the new length immediately.
func (t Timer) SetLength(length time.Duration) Timer {
	if t.length == length || length < MinLength {
		return t
	}
	n := t
	n.length = length
	if t.state == StateReset {
		n.totalLength = length
		n.remainingTime = length
	}
	return n
}

// SetButtonTime changes the quick-add increment.
func (t Timer) SetButtonTime(d time.Duration) Timer {
	if t.buttonTime == d {
		return t
	}
	n := t
	n.buttonTime = d
	return n
}

// SetDeleteAfterUse changes whether the timer is deleted once it is
// dismissed after expiring.
func (t Timer) SetDeleteAfterUse(v bool) Timer {
	if t.deleteAfterUse == v {
		return t
	}
	n := t
	n.deleteAfterUse = v
	return n
}

// Equal reports whether two timers hold identical values.
func (t Timer) Equal(o Timer) bool {
	return t.id == o.id &&
		t.state == o.state &&
		t.length == o.length &&
		t.totalLength == o.totalLength &&
		t.lastStartTime == o.lastStartTime &&
		t.lastWallClock.Equal(o.lastWallClock) &&
		t.remainingTime == o.remainingTime &&
		t.label == o.label &&
		t.buttonTime == o.buttonTime &&
		t.deleteAfterUse == o.deleteAfterUse
}
