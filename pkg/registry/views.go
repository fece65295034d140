package registry

import (
	"slices"

	"github.com/deskclock/deskclock-go/pkg/timer"
)

// view is a lazily built, sorted subset of the timers.
type view struct {
	timers []timer.Timer
	valid  bool
}

func (v *view) invalidate() {
	v.timers = nil
	v.valid = false
}

// Timer returns the timer with the given id.
func (r *Registry) Timer(id int) (timer.Timer, bool) {
	if i := r.index(id); i >= 0 {
		return r.timers[i], true
	}
	return timer.Timer{}, false
}

// Timers returns all timers, most recently created first.
func (r *Registry) Timers() []timer.Timer {
	return slices.Clone(r.timers)
}

// ExpiredTimers returns the expired timers in display order.
func (r *Registry) ExpiredTimers() []timer.Timer {
	return r.sorted(&r.expired, timer.Timer.IsExpired)
}

// MissedTimers returns the missed timers in display order.
func (r *Registry) MissedTimers() []timer.Timer {
	return r.sorted(&r.missed, timer.Timer.IsMissed)
}

// RunningTimers returns the running timers, most recently created first.
func (r *Registry) RunningTimers() []timer.Timer {
	var running []timer.Timer
	for _, t := range r.timers {
		if t.IsRunning() {
			running = append(running, t)
		}
	}
	return running
}

func (r *Registry) sorted(v *view, match func(timer.Timer) bool) []timer.Timer {
	if !v.valid {
		v.timers = nil
		for _, t := range r.timers {
			if match(t) {
				v.timers = append(v.timers, t)
			}
		}
		timer.SortTimers(v.timers, r.opts.Sort, r.clock)
		v.valid = true
	}
	return slices.Clone(v.timers)
}
