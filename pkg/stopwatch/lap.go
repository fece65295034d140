package stopwatch

import "time"

// MaxLaps is the number of laps a stopwatch can record.
const MaxLaps = 98

// Lap is one recorded lap. Laps are kept most recent first.
type Lap struct {
	// Number is the 1-based lap index.
	Number int

	// LapTime is the duration of this lap alone.
	LapTime time.Duration

	// AccumulatedTime is the stopwatch total when the lap was recorded.
	AccumulatedTime time.Duration
}

// NextLap builds the lap recorded at total, given the existing laps.
func NextLap(laps []Lap, total time.Duration) Lap {
	var prev time.Duration
	if len(laps) > 0 {
		prev = laps[0].AccumulatedTime
	}
	return Lap{
		Number:          len(laps) + 1,
		LapTime:         total - prev,
		AccumulatedTime: total,
	}
}

// CurrentLapTime returns the time spent in the lap in progress.
func CurrentLapTime(laps []Lap, total time.Duration) time.Duration {
	if len(laps) == 0 {
		return total
	}
	return max(0, total-laps[0].AccumulatedTime)
}

// LongestLapTime returns the duration of the longest recorded lap.
func LongestLapTime(laps []Lap) time.Duration {
	var longest time.Duration
	for _, l := range laps {
		longest = max(longest, l.LapTime)
	}
	return longest
}
