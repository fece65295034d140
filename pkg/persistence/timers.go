package persistence

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/deskclock/deskclock-go/pkg/timer"
)

// Timer record keys.
const (
	keyTimerIDs    = "timers_list"
	keyNextTimerID = "next_timer_id"

	keyTimerState       = "timer_state_"
	keyTimerLength      = "timer_length_"
	keyTimerTotalLength = "timer_total_length_"
	keyTimerStartTime   = "timer_start_time_"
	keyTimerWallClock   = "timer_wall_clock_time_"
	keyTimerRemaining   = "timer_remaining_time_"
	keyTimerLabel       = "timer_label_"
	keyTimerButtonTime  = "timer_button_time_"
	keyTimerDeleteAfter = "delete_after_use_"
)

// FirstTimerID is the id given to the first timer ever created.
const FirstTimerID = 1

func timerKey(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

// LoadTimers reads every stored timer, most recently created first.
func LoadTimers(s Store) []timer.Timer {
	ids := s.IDs(keyTimerIDs)
	slices.Sort(ids)
	slices.Reverse(ids)
	ids = slices.Compact(ids)

	timers := make([]timer.Timer, 0, len(ids))
	for _, id := range ids {
		timers = append(timers, loadTimer(s, id))
	}
	return timers
}

// loadTimer rebuilds one timer, substituting defaults for missing fields.
func loadTimer(s Store, id int) timer.Timer {
	state := timer.State(s.Int64(timerKey(keyTimerState, id), int64(timer.StateReset)))
	length := time.Duration(s.Int64(timerKey(keyTimerLength, id), int64(timer.MinLength)))
	total := time.Duration(s.Int64(timerKey(keyTimerTotalLength, id), int64(length)))

	return timer.Restore(timer.Fields{
		ID:                id,
		State:             state,
		Length:            length,
		TotalLength:       total,
		LastStartTime:     time.Duration(s.Int64(timerKey(keyTimerStartTime, id), int64(timer.Unused))),
		LastWallClockTime: fromUnixNano(s.Int64(timerKey(keyTimerWallClock, id), 0)),
		RemainingTime:     time.Duration(s.Int64(timerKey(keyTimerRemaining, id), int64(total))),
		Label:             s.String(timerKey(keyTimerLabel, id), ""),
		ButtonTime:        time.Duration(s.Int64(timerKey(keyTimerButtonTime, id), int64(timer.DefaultButtonTime))),
		DeleteAfterUse:    s.Bool(timerKey(keyTimerDeleteAfter, id), false),
	})
}

// AddTimer assigns the next id to t, persists it and returns the stored
// timer.
func AddTimer(s Store, t timer.Timer) (timer.Timer, error) {
	id := int(s.Int64(keyNextTimerID, FirstTimerID))
	f := t.Fields()
	f.ID = id
	stored := timer.Restore(f)

	ids := append(s.IDs(keyTimerIDs), id)
	e := s.Edit().
		PutIDs(keyTimerIDs, ids).
		PutInt64(keyNextTimerID, int64(id+1))
	putTimer(e, stored)
	if err := e.Commit(); err != nil {
		return timer.Timer{}, fmt.Errorf("add timer %d: %w", id, err)
	}
	return stored, nil
}

// UpdateTimer overwrites the stored record of t.
func UpdateTimer(s Store, t timer.Timer) error {
	e := s.Edit()
	putTimer(e, t)
	if err := e.Commit(); err != nil {
		return fmt.Errorf("update timer %d: %w", t.ID(), err)
	}
	return nil
}

// RemoveTimer erases t and drops it from the id set.
func RemoveTimer(s Store, t timer.Timer) error {
	id := t.ID()
	ids := slices.DeleteFunc(s.IDs(keyTimerIDs), func(v int) bool { return v == id })

	e := s.Edit()
	if len(ids) == 0 {
		e.Remove(keyTimerIDs)
	} else {
		e.PutIDs(keyTimerIDs, ids)
	}
	for _, prefix := range []string{
		keyTimerState, keyTimerLength, keyTimerTotalLength, keyTimerStartTime,
		keyTimerWallClock, keyTimerRemaining, keyTimerLabel, keyTimerButtonTime,
		keyTimerDeleteAfter,
	} {
		e.Remove(timerKey(prefix, id))
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("remove timer %d: %w", id, err)
	}
	return nil
}

func putTimer(e Editor, t timer.Timer) {
	id := t.ID()
	e.PutInt64(timerKey(keyTimerState, id), int64(t.State())).
		PutInt64(timerKey(keyTimerLength, id), int64(t.Length())).
		PutInt64(timerKey(keyTimerTotalLength, id), int64(t.TotalLength())).
		PutInt64(timerKey(keyTimerStartTime, id), int64(t.LastStartTime())).
		PutInt64(timerKey(keyTimerWallClock, id), toUnixNano(t.LastWallClockTime())).
		PutInt64(timerKey(keyTimerRemaining, id), int64(t.StoredRemainingTime())).
		PutString(timerKey(keyTimerLabel, id), t.Label()).
		PutInt64(timerKey(keyTimerButtonTime, id), int64(t.ButtonTime())).
		PutBool(timerKey(keyTimerDeleteAfter, id), t.DeleteAfterUse())
}

// toUnixNano stores the zero time as 0.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
