package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/expiry"
	"github.com/deskclock/deskclock-go/pkg/log"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateStarting - service is starting up.
	StateStarting

	// StateRunning - service is running normally.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Time-set watcher defaults.
const (
	DefaultTimeSetCheckInterval = 10 * time.Second
	DefaultTimeSetTolerance     = 2 * time.Second
)

// Config configures a ClockService.
type Config struct {
	// Store holds the timers and the stopwatch. Required. The service
	// closes it on Stop.
	Store persistence.Store

	// Output plays ringtones. Required.
	Output ringer.Output

	// Clock defaults to clock.System().
	Clock clock.Clock

	// Alarms is the host wake-up scheduler. If nil, in-process alarms on
	// Clock are used.
	Alarms expiry.Alarms

	// Journal receives timer events. If it implements io.Closer it is
	// closed on Stop. Nil disables the journal.
	Journal log.Logger

	// Notifier is told once per registry operation that timers changed.
	Notifier registry.Notifier

	// MissedThreshold is how overdue a timer may be after a restart before
	// it is reported missed (default: 60s).
	MissedThreshold time.Duration

	// GuardWindow is how close an expiration must be to be bridged with a
	// wake lock instead of an alarm (default: 5s).
	GuardWindow time.Duration

	// Sort orders reset timers in the expired and missed views.
	Sort timer.Sort

	// Ringtone is the URI played for expired timers. Empty selects the
	// built-in tone.
	Ringtone string

	// Crescendo is the volume ramp duration. Zero disables it.
	Crescendo time.Duration

	// CrescendoInterval is the time between volume steps (default: 50ms).
	CrescendoInterval time.Duration

	// CrescendoRetries bounds how long the crescendo waits for playback to
	// start (default: 10 ticks).
	CrescendoRetries int

	// AutoSilence decides when a ringing alarm silences itself.
	AutoSilence ringer.AutoSilence

	// TimeSetCheckInterval is how often the wall clock is compared with the
	// monotonic clock (default: 10s). Negative disables the check.
	TimeSetCheckInterval time.Duration

	// TimeSetTolerance is the drift tolerated before the time set fixup
	// runs (default: 2s).
	TimeSetTolerance time.Duration

	// Logger is the optional logger for operational output.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults. Store and Output
// must still be set.
func DefaultConfig() Config {
	return Config{
		MissedThreshold:      registry.DefaultMissedThreshold,
		GuardWindow:          expiry.DefaultGuardWindow,
		Sort:                 timer.SortDurationAscending,
		CrescendoInterval:    ringer.DefaultCrescendoInterval,
		CrescendoRetries:     ringer.DefaultCrescendoRetries,
		AutoSilence:          ringer.AutoSilence(10 * time.Minute),
		TimeSetCheckInterval: DefaultTimeSetCheckInterval,
		TimeSetTolerance:     DefaultTimeSetTolerance,
	}
}
