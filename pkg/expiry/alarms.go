package expiry

import (
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// Alarms is the host scheduler that wakes the process at a monotonic
// instant, even from low-power idle.
type Alarms interface {
	// ScheduleAt registers a one-shot callback for token at the given
	// monotonic instant, replacing any registration with the same token.
	ScheduleAt(at time.Duration, token string) error

	// Cancel drops the registration for token. Unknown tokens are ignored.
	Cancel(token string) error
}

// ClockAlarms is an in-process Alarms built on a clock. It does not survive
// the process, so it only suits hosts where the daemon keeps running.
type ClockAlarms struct {
	clock   clock.Clock
	deliver func(token string)

	mu     sync.Mutex
	timers map[string]clock.Timer
}

// NewClockAlarms creates alarms that call deliver with the token when due.
// deliver runs on the clock's callback goroutine.
func NewClockAlarms(c clock.Clock, deliver func(token string)) *ClockAlarms {
	return &ClockAlarms{
		clock:   c,
		deliver: deliver,
		timers:  make(map[string]clock.Timer),
	}
}

func (a *ClockAlarms) ScheduleAt(at time.Duration, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[token]; ok {
		t.Stop()
	}
	var t clock.Timer
	t = a.clock.AfterFunc(at-a.clock.Elapsed(), func() {
		a.mu.Lock()
		current := a.timers[token] == t
		if current {
			delete(a.timers, token)
		}
		a.mu.Unlock()
		if current {
			a.deliver(token)
		}
	})
	a.timers[token] = t
	return nil
}

func (a *ClockAlarms) Cancel(token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[token]; ok {
		t.Stop()
		delete(a.timers, token)
	}
	return nil
}

// Pending returns the number of outstanding registrations.
func (a *ClockAlarms) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

var _ Alarms = (*ClockAlarms)(nil)
