package registry

import (
	"slices"

	"github.com/deskclock/deskclock-go/pkg/stopwatch"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// TimerListener is told about every timer change.
type TimerListener interface {
	TimerAdded(t timer.Timer)
	TimerUpdated(before, after timer.Timer)
	TimerRemoved(t timer.Timer)
}

// StopwatchListener is told about every stopwatch change.
type StopwatchListener interface {
	StopwatchUpdated(before, after stopwatch.Stopwatch)
	LapAdded(lap stopwatch.Lap)
}

// Notifier is told once per operation that the timer list changed, so that
// a presentation layer can re-read the views.
type Notifier interface {
	TimersChanged()
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func()

// TimersChanged calls f.
func (f NotifierFunc) TimersChanged() { f() }

// AddTimerListener registers l. Adding the same listener twice has no
// effect.
func (r *Registry) AddTimerListener(l TimerListener) {
	if !slices.Contains(r.timerListeners, l) {
		r.timerListeners = append(r.timerListeners, l)
	}
}

// RemoveTimerListener unregisters l.
func (r *Registry) RemoveTimerListener(l TimerListener) {
	r.timerListeners = slices.DeleteFunc(r.timerListeners, func(x TimerListener) bool { return x == l })
}

// AddStopwatchListener registers l.
func (r *Registry) AddStopwatchListener(l StopwatchListener) {
	if !slices.Contains(r.stopwatchListeners, l) {
		r.stopwatchListeners = append(r.stopwatchListeners, l)
	}
}

// RemoveStopwatchListener unregisters l.
func (r *Registry) RemoveStopwatchListener(l StopwatchListener) {
	r.stopwatchListeners = slices.DeleteFunc(r.stopwatchListeners, func(x StopwatchListener) bool { return x == l })
}

// SetNotifier installs n, replacing any previous notifier. Nil removes it.
func (r *Registry) SetNotifier(n Notifier) {
	r.notifier = n
}

func (r *Registry) notify() {
	if r.notifier != nil {
		r.notifier.TimersChanged()
	}
}
