package persistence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/deskclock/deskclock-go/pkg/stopwatch"
)

// Stopwatch and lap record keys.
const (
	keyStopwatchState     = "sw_state"
	keyStopwatchStartTime = "sw_start_time"
	keyStopwatchWallClock = "sw_wall_clock_time"
	keyStopwatchAccum     = "sw_accum_time"

	keyLapCount     = "lap_count"
	keyLapTime      = "lap_time_"
	keyLapTotalTime = "lap_total_time_"
)

// LoadStopwatch reads the stopwatch, or the RESET stopwatch if none is stored.
func LoadStopwatch(s Store) stopwatch.Stopwatch {
	return stopwatch.Restore(
		stopwatch.State(s.Int64(keyStopwatchState, int64(stopwatch.StateReset))),
		time.Duration(s.Int64(keyStopwatchStartTime, int64(stopwatch.Unused))),
		fromUnixNano(s.Int64(keyStopwatchWallClock, 0)),
		time.Duration(s.Int64(keyStopwatchAccum, 0)),
	)
}

// SaveStopwatch stores sw. A RESET stopwatch erases the record.
func SaveStopwatch(s Store, sw stopwatch.Stopwatch) error {
	if err := putStopwatch(s.Edit(), sw).Commit(); err != nil {
		return fmt.Errorf("save stopwatch: %w", err)
	}
	return nil
}

// ResetStopwatch erases the stopwatch and its laps in one commit.
func ResetStopwatch(s Store) error {
	e := putStopwatch(s.Edit(), stopwatch.Zero)
	if err := removeLaps(s, e).Commit(); err != nil {
		return fmt.Errorf("reset stopwatch: %w", err)
	}
	return nil
}

func putStopwatch(e Editor, sw stopwatch.Stopwatch) Editor {
	if sw.IsReset() {
		return e.Remove(keyStopwatchState).
			Remove(keyStopwatchStartTime).
			Remove(keyStopwatchWallClock).
			Remove(keyStopwatchAccum)
	}
	return e.PutInt64(keyStopwatchState, int64(sw.State())).
		PutInt64(keyStopwatchStartTime, int64(sw.LastStartTime())).
		PutInt64(keyStopwatchWallClock, toUnixNano(sw.LastWallClockTime())).
		PutInt64(keyStopwatchAccum, int64(sw.AccumulatedTime()))
}

// lapCount reads the stored lap count, clamped to what a stopwatch can hold.
func lapCount(s Store) int {
	return int(min(max(s.Int64(keyLapCount, 0), 0), stopwatch.MaxLaps))
}

// LoadLaps reads the recorded laps, most recent first.
func LoadLaps(s Store) []stopwatch.Lap {
	count := lapCount(s)
	laps := make([]stopwatch.Lap, 0, count)
	for n := count; n >= 1; n-- {
		laps = append(laps, stopwatch.Lap{
			Number:          n,
			LapTime:         time.Duration(s.Int64(keyLapTime+strconv.Itoa(n), 0)),
			AccumulatedTime: time.Duration(s.Int64(keyLapTotalTime+strconv.Itoa(n), 0)),
		})
	}
	return laps
}

// AddLap appends lap to the stored laps. The lap number decides its slot.
func AddLap(s Store, lap stopwatch.Lap) error {
	n := strconv.Itoa(lap.Number)
	err := s.Edit().
		PutInt64(keyLapCount, int64(lap.Number)).
		PutInt64(keyLapTime+n, int64(lap.LapTime)).
		PutInt64(keyLapTotalTime+n, int64(lap.AccumulatedTime)).
		Commit()
	if err != nil {
		return fmt.Errorf("add lap %d: %w", lap.Number, err)
	}
	return nil
}

// ClearLaps erases all recorded laps.
func ClearLaps(s Store) error {
	if err := removeLaps(s, s.Edit()).Commit(); err != nil {
		return fmt.Errorf("clear laps: %w", err)
	}
	return nil
}

func removeLaps(s Store, e Editor) Editor {
	e.Remove(keyLapCount)
	for n := 1; n <= lapCount(s); n++ {
		e.Remove(keyLapTime + strconv.Itoa(n))
		e.Remove(keyLapTotalTime + strconv.Itoa(n))
	}
	return e
}
