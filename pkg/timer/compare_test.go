package timer

import (
	"testing"
	"time"
)

func ids(ts []Timer) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.ID()
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortTimersByState(t *testing.T) {
	c := newClock()

	reset := New(1, time.Minute, "", time.Minute, false)
	paused := New(2, time.Minute, "", time.Minute, false).Start(c).Pause(c)
	running := New(3, time.Minute, "", time.Minute, false).Start(c)
	expired := New(4, time.Minute, "", time.Minute, false).Start(c).Expire(c)
	missed := New(5, time.Minute, "", time.Minute, false).Start(c).Miss(c)

	ts := []Timer{reset, paused, running, expired, missed}
	SortTimers(ts, SortDurationAscending, c)

	if got, want := ids(ts), []int{5, 4, 3, 2, 1}; !equalInts(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortRunningByRemaining(t *testing.T) {
	c := newClock()

	long := New(1, 9*time.Second, "", time.Minute, false).Start(c)
	short := New(2, 5*time.Second, "", time.Minute, false).Start(c)
	tie := New(3, 5*time.Second, "", time.Minute, false).Start(c)

	ts := []Timer{long, tie, short}
	SortTimers(ts, SortDurationAscending, c)

	if got, want := ids(ts), []int{2, 3, 1}; !equalInts(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortResetSecondaryKey(t *testing.T) {
	c := newClock()

	a := New(1, 3*time.Minute, "Pasta", time.Minute, false)
	b := New(2, time.Minute, "eggs", time.Minute, false)
	d := New(3, 2*time.Minute, "bread", time.Minute, false)

	tests := []struct {
		sort Sort
		want []int
	}{
		{SortDurationAscending, []int{2, 3, 1}},
		{SortDurationDescending, []int{1, 3, 2}},
		{SortLabel, []int{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.sort.String(), func(t *testing.T) {
			ts := []Timer{a, b, d}
			SortTimers(ts, tt.sort, c)
			if got := ids(ts); !equalInts(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    Sort
		wantErr bool
	}{
		{"", SortDurationAscending, false},
		{"duration-asc", SortDurationAscending, false},
		{"Duration-Desc", SortDurationDescending, false},
		{"label", SortLabel, false},
		{"random", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSort(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSort(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
