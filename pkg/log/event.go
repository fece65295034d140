package log

import "time"

// Event represents one journal entry.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the process run that wrote the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Source is the kind of object the event is about.
	Source Source `cbor:"3,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// TimerID is the timer the event is about (timer events only).
	TimerID int `cbor:"5,keyasint,omitempty"`

	// Label is the timer label at the time of the event.
	Label string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (at most one of these will be set).
	Transition *TransitionEvent `cbor:"7,keyasint,omitempty"`
	Lap        *LapEvent        `cbor:"8,keyasint,omitempty"`
	Error      *ErrorEventData  `cbor:"9,keyasint,omitempty"`
}

// Source indicates what the event is about.
type Source uint8

const (
	// SourceTimer indicates a countdown timer.
	SourceTimer Source = 0
	// SourceStopwatch indicates the stopwatch or its laps.
	SourceStopwatch Source = 1
	// SourceSystem indicates the engine itself (clock changes, errors).
	SourceSystem Source = 2
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceTimer:
		return "TIMER"
	case SourceStopwatch:
		return "STOPWATCH"
	case SourceSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies journal events.
type Kind uint8

const (
	// KindAdded indicates a timer was created.
	KindAdded Kind = 0
	// KindUpdated indicates a timer or the stopwatch changed.
	KindUpdated Kind = 1
	// KindRemoved indicates a timer was deleted.
	KindRemoved Kind = 2
	// KindLap indicates a lap was recorded.
	KindLap Kind = 3
	// KindReboot indicates the reboot fixup ran.
	KindReboot Kind = 4
	// KindTimeSet indicates the wall clock was changed.
	KindTimeSet Kind = 5
	// KindError indicates an operation failed.
	KindError Kind = 6
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAdded:
		return "ADDED"
	case KindUpdated:
		return "UPDATED"
	case KindRemoved:
		return "REMOVED"
	case KindLap:
		return "LAP"
	case KindReboot:
		return "REBOOT"
	case KindTimeSet:
		return "TIME_SET"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name as produced by String.
func ParseKind(name string) (Kind, bool) {
	for k := KindAdded; k <= KindError; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// TransitionEvent captures a state change of a timer or the stopwatch.
type TransitionEvent struct {
	// OldState is the previous state (empty for additions).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state (empty for removals).
	NewState string `cbor:"2,keyasint,omitempty"`

	// Remaining is the live remaining time of a timer, or the total time
	// of the stopwatch, when the event was recorded.
	Remaining time.Duration `cbor:"3,keyasint"`

	// Length is the configured timer length.
	Length time.Duration `cbor:"4,keyasint,omitempty"`
}

// LapEvent captures a recorded stopwatch lap.
type LapEvent struct {
	Number  int           `cbor:"1,keyasint"`
	LapTime time.Duration `cbor:"2,keyasint"`
	Total   time.Duration `cbor:"3,keyasint"`
}

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
