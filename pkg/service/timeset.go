package service

import (
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

// timeSetWatcher detects wall clock changes. The wall time at the monotonic
// origin stays constant while both clocks tick together; a jump in it means
// the wall clock was set.
type timeSetWatcher struct {
	clock     clock.Clock
	exec      worker.Executor
	interval  time.Duration
	tolerance time.Duration
	onChange  func(drift time.Duration)

	mu      sync.Mutex
	origin  time.Time
	cancel  worker.Cancel
	stopped bool
}

func newTimeSetWatcher(c clock.Clock, exec worker.Executor, interval, tolerance time.Duration, onChange func(time.Duration)) *timeSetWatcher {
	return &timeSetWatcher{
		clock:     c,
		exec:      exec,
		interval:  interval,
		tolerance: tolerance,
		onChange:  onChange,
	}
}

func (w *timeSetWatcher) wallOrigin() time.Time {
	return w.clock.Now().Add(-w.clock.Elapsed())
}

func (w *timeSetWatcher) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.origin = w.wallOrigin()
	w.scheduleLocked()
}

func (w *timeSetWatcher) scheduleLocked() {
	if w.stopped {
		return
	}
	w.cancel = w.exec.PostDelayed(w.interval, w.check)
}

func (w *timeSetWatcher) check() {
	origin := w.wallOrigin()

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	drift := origin.Sub(w.origin)
	changed := drift > w.tolerance || drift < -w.tolerance
	if changed {
		w.origin = origin
	}
	w.scheduleLocked()
	w.mu.Unlock()

	if changed {
		w.onChange(drift)
	}
}

func (w *timeSetWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}
