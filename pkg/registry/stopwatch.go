package registry

import (
	"fmt"
	"slices"
	"time"

	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/stopwatch"
)

// Stopwatch returns the current stopwatch.
func (r *Registry) Stopwatch() stopwatch.Stopwatch {
	return r.stopwatch
}

// SetStopwatch persists sw and makes it current. Resetting the stopwatch
// clears its laps.
func (r *Registry) SetStopwatch(sw stopwatch.Stopwatch) (stopwatch.Stopwatch, error) {
	if err := r.setStopwatch(sw); err != nil {
		return r.stopwatch, err
	}
	return sw, nil
}

func (r *Registry) setStopwatch(sw stopwatch.Stopwatch) error {
	before := r.stopwatch
	if before.Equal(sw) {
		return nil
	}
	var err error
	if sw.IsReset() {
		err = persistence.ResetStopwatch(r.store)
	} else {
		err = persistence.SaveStopwatch(r.store, sw)
	}
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if sw.IsReset() {
		r.laps = nil
	}
	r.stopwatch = sw

	for _, l := range r.stopwatchListeners {
		l.StopwatchUpdated(before, sw)
	}
	return nil
}

// AddLap records a lap at the current stopwatch time. It reports false when
// the stopwatch is reset or the lap limit has been reached.
func (r *Registry) AddLap() (stopwatch.Lap, bool, error) {
	if r.stopwatch.IsReset() || !r.CanAddMoreLaps() {
		return stopwatch.Lap{}, false, nil
	}

	lap := stopwatch.NextLap(r.laps, r.stopwatch.TotalTime(r.clock))
	if err := persistence.AddLap(r.store, lap); err != nil {
		return stopwatch.Lap{}, false, fmt.Errorf("registry: %w", err)
	}
	r.laps = slices.Insert(r.laps, 0, lap)

	for _, l := range r.stopwatchListeners {
		l.LapAdded(lap)
	}
	return lap, true, nil
}

// Laps returns the recorded laps, most recent first.
func (r *Registry) Laps() []stopwatch.Lap {
	return slices.Clone(r.laps)
}

// CanAddMoreLaps reports whether another lap fits.
func (r *Registry) CanAddMoreLaps() bool {
	return len(r.laps) < stopwatch.MaxLaps
}

// CurrentLapTime returns the time spent in the lap in progress.
func (r *Registry) CurrentLapTime() time.Duration {
	return stopwatch.CurrentLapTime(r.laps, r.stopwatch.TotalTime(r.clock))
}

// LongestLapTime returns the duration of the longest recorded lap.
func (r *Registry) LongestLapTime() time.Duration {
	return stopwatch.LongestLapTime(r.laps)
}
