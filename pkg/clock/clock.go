// Package clock supplies the time sources used by the timer engine.
//
// Two readings are exposed. Elapsed is monotonic: it never moves backwards
// and is unaffected by changes to the wall clock, which makes it the basis
// for every expiration instant. Now is the wall clock; it is only used to
// recover running timers after the monotonic origin has moved, e.g. after a
// reboot or process restart.
//
// # Epochs
//
// The monotonic origin of System is the moment the process started. A
// process restart therefore behaves like a device reboot: persisted
// monotonic timestamps are meaningless and running timers must be fixed up
// from their wall-clock start times.
package clock

import (
	"time"
)

// Timer is a pending one-shot callback created by AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock provides monotonic time, wall-clock time and delayed callbacks.
type Clock interface {
	// Elapsed returns the monotonic time since the clock's origin.
	Elapsed() time.Duration

	// Now returns the current wall-clock time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine (or synchronously, for test
	// clocks) once d has elapsed on the monotonic clock.
	AfterFunc(d time.Duration, f func()) Timer
}

// System returns the process clock.
func System() Clock {
	return systemClock{}
}

var processStart = time.Now()

type systemClock struct{}

func (systemClock) Elapsed() time.Duration {
	// time.Since uses the monotonic reading captured in processStart.
	return time.Since(processStart)
}

func (systemClock) Now() time.Time {
	return time.Now().Round(0)
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Compile-time interface satisfaction check.
var _ Clock = systemClock{}
