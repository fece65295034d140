package registry

import (
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// AfterReboot corrects every timer and the stopwatch after a restart of the
// monotonic clock. Running timers that are now overdue by more than the
// missed threshold become MISSED. The notifier fires once for the batch.
func (r *Registry) AfterReboot() error {
	r.opts.Logger.Info("registry: applying reboot fixup")
	err := r.batch(func(t timer.Timer) timer.Timer {
		return r.missIfOverdue(t.UpdateAfterReboot(r.clock))
	})
	if err != nil {
		return err
	}
	return r.setStopwatch(r.stopwatch.UpdateAfterReboot(r.clock))
}

// AfterTimeSet corrects every timer and the stopwatch after the wall clock
// was changed. The notifier fires once for the batch.
func (r *Registry) AfterTimeSet() error {
	r.opts.Logger.Info("registry: applying time set fixup")
	err := r.batch(func(t timer.Timer) timer.Timer {
		return r.missIfOverdue(t.UpdateAfterTimeSet(r.clock))
	})
	if err != nil {
		return err
	}
	return r.setStopwatch(r.stopwatch.UpdateAfterTimeSet(r.clock))
}

func (r *Registry) missIfOverdue(t timer.Timer) timer.Timer {
	if t.IsRunning() && t.RemainingTime(r.clock) < r.opts.MissedThreshold {
		r.opts.Logger.Info("registry: timer missed", "timer", t.ID(), "remaining", t.RemainingTime(r.clock))
		return t.Miss(r.clock)
	}
	return t
}
