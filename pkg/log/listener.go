package log

import (
	"github.com/google/uuid"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/stopwatch"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// Listener converts registry callbacks into journal events. Every event it
// writes carries the same session ID, generated when the listener is
// created.
type Listener struct {
	journal   Logger
	clock     clock.Clock
	sessionID string
}

// NewListener creates a listener writing to journal. A nil journal disables
// it.
func NewListener(journal Logger, c clock.Clock) *Listener {
	if journal == nil {
		journal = NoopLogger{}
	}
	return &Listener{
		journal:   journal,
		clock:     c,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the ID stamped on every event.
func (l *Listener) SessionID() string {
	return l.sessionID
}

func (l *Listener) event(source Source, kind Kind) Event {
	return Event{
		Timestamp: l.clock.Now(),
		SessionID: l.sessionID,
		Source:    source,
		Kind:      kind,
	}
}

func (l *Listener) timerEvent(kind Kind, t timer.Timer, oldState, newState string) Event {
	e := l.event(SourceTimer, kind)
	e.TimerID = t.ID()
	e.Label = t.Label()
	e.Transition = &TransitionEvent{
		OldState:  oldState,
		NewState:  newState,
		Remaining: t.RemainingTime(l.clock),
		Length:    t.Length(),
	}
	return e
}

// TimerAdded records a new timer.
func (l *Listener) TimerAdded(t timer.Timer) {
	l.journal.Log(l.timerEvent(KindAdded, t, "", t.State().String()))
}

// TimerUpdated records a timer change.
func (l *Listener) TimerUpdated(before, after timer.Timer) {
	l.journal.Log(l.timerEvent(KindUpdated, after, before.State().String(), after.State().String()))
}

// TimerRemoved records a deleted timer.
func (l *Listener) TimerRemoved(t timer.Timer) {
	l.journal.Log(l.timerEvent(KindRemoved, t, t.State().String(), ""))
}

// StopwatchUpdated records a stopwatch change.
func (l *Listener) StopwatchUpdated(before, after stopwatch.Stopwatch) {
	e := l.event(SourceStopwatch, KindUpdated)
	e.Transition = &TransitionEvent{
		OldState:  before.State().String(),
		NewState:  after.State().String(),
		Remaining: after.TotalTime(l.clock),
	}
	l.journal.Log(e)
}

// LapAdded records a new lap.
func (l *Listener) LapAdded(lap stopwatch.Lap) {
	e := l.event(SourceStopwatch, KindLap)
	e.Lap = &LapEvent{
		Number:  lap.Number,
		LapTime: lap.LapTime,
		Total:   lap.AccumulatedTime,
	}
	l.journal.Log(e)
}

// Reboot records that the reboot fixup ran.
func (l *Listener) Reboot() {
	l.journal.Log(l.event(SourceSystem, KindReboot))
}

// TimeSet records a wall clock change.
func (l *Listener) TimeSet() {
	l.journal.Log(l.event(SourceSystem, KindTimeSet))
}

// Error records a failed operation.
func (l *Listener) Error(context string, err error) {
	e := l.event(SourceSystem, KindError)
	e.Error = &ErrorEventData{Message: err.Error(), Context: context}
	l.journal.Log(e)
}
