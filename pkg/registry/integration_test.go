package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/expiry"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/ringer/mocks"
	"github.com/deskclock/deskclock-go/pkg/timer"
	"github.com/deskclock/deskclock-go/pkg/wakelock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

// engine wires a registry to a real scheduler and ringer on one clock, the
// way the service does, but with every executor inline.
type engine struct {
	c      *clock.Manual
	lock   *wakelock.Counter
	alarms *expiry.ClockAlarms
	sched  *expiry.Scheduler
	ring   *ringer.Ringer
	reg    *registry.Registry
}

func newEngine(t *testing.T, out ringer.Output, silence ringer.AutoSilence) *engine {
	t.Helper()
	e := &engine{
		c:    clock.NewManual(10*time.Minute, epoch),
		lock: wakelock.NewCounter(nil),
	}
	exec := worker.NewInline(e.c)

	e.alarms = expiry.NewClockAlarms(e.c, func(token string) { e.sched.Deliver(token) })
	e.sched = expiry.NewScheduler(expiry.Config{
		Clock:    e.c,
		Alarms:   e.alarms,
		WakeLock: e.lock,
		Executor: exec,
		Expire: func(tm timer.Timer) {
			assert.NoError(t, e.reg.ExpireTimer(tm.ID()))
		},
		Resync: func() { e.reg.Rearm() },
	})
	e.ring = ringer.New(ringer.Config{
		Output:      out,
		Clock:       e.c,
		WakeLock:    e.lock,
		Model:       exec,
		Background:  exec,
		Ringtone:    "file:///tones/chime.ogg",
		AutoSilence: silence,
		OnSilenced: func() {
			assert.NoError(t, e.reg.SilenceExpiredTimers())
		},
	})
	e.reg = registry.New(persistence.NewMemoryStore(), e.c, registry.Options{
		Scheduler: e.sched,
		Ringer:    e.ring,
	})
	e.reg.Load()
	return e
}

func (e *engine) start(t *testing.T, length time.Duration) int {
	t.Helper()
	tm, err := e.reg.Add(length, "", time.Minute, false)
	require.NoError(t, err)
	require.NoError(t, e.reg.Update(tm.Start(e.c)))
	return tm.ID()
}

func (e *engine) state(t *testing.T, id int) timer.State {
	t.Helper()
	tm, ok := e.reg.Timer(id)
	require.True(t, ok)
	return tm.State()
}

func TestEngineExpiresInOrder(t *testing.T) {
	out := mocks.NewMockOutput(t)
	out.EXPECT().Play("file:///tones/chime.ogg", true, ringer.MaxVolume).Return(ringer.Handle(1), nil).Times(2)
	out.EXPECT().Stop(ringer.Handle(1)).Return(nil).Times(2)

	e := newEngine(t, out, ringer.AutoSilenceNever)
	first := e.start(t, 5*time.Second)
	second := e.start(t, 9*time.Second)

	// One alarm, for the earlier timer.
	assert.Equal(t, 1, e.alarms.Pending())
	assert.Contains(t, e.sched.Armed(), "timer-1@")

	e.c.Advance(5 * time.Second)
	assert.Equal(t, timer.StateExpired, e.state(t, first))
	assert.Equal(t, timer.StateRunning, e.state(t, second))
	assert.True(t, e.ring.Sounding())

	// The second timer is 4s out, inside the guard window.
	assert.True(t, e.sched.Guarding())
	assert.Equal(t, 0, e.alarms.Pending())

	require.NoError(t, e.reg.ResetOrDelete(mustTimer(t, e.reg, first), true))
	assert.False(t, e.ring.Sounding())
	assert.True(t, e.sched.Guarding())

	e.c.Advance(4 * time.Second)
	assert.Equal(t, timer.StateExpired, e.state(t, second))
	assert.True(t, e.ring.Sounding())
	assert.False(t, e.sched.Guarding())

	require.NoError(t, e.reg.ResetExpiredTimers(true))
	assert.False(t, e.ring.Sounding())
	assert.False(t, e.lock.Held())
	assert.Empty(t, e.sched.Armed())
}

func TestEngineRingerSetSemantics(t *testing.T) {
	out := mocks.NewMockOutput(t)
	out.EXPECT().Play("file:///tones/chime.ogg", true, ringer.MaxVolume).Return(ringer.Handle(3), nil).Once()
	out.EXPECT().Stop(ringer.Handle(3)).Return(nil).Once()

	e := newEngine(t, out, ringer.AutoSilenceNever)
	a := e.start(t, time.Minute)
	b := e.start(t, 2*time.Minute)

	e.c.Advance(time.Minute)
	assert.Equal(t, []int{a}, e.ring.Ringing())

	e.c.Advance(time.Minute)
	assert.Equal(t, []int{a, b}, e.ring.Ringing())

	require.NoError(t, e.reg.ResetOrDelete(mustTimer(t, e.reg, a), true))
	assert.Equal(t, []int{b}, e.ring.Ringing())
	assert.True(t, e.ring.Sounding())

	require.NoError(t, e.reg.ResetOrDelete(mustTimer(t, e.reg, b), true))
	assert.Empty(t, e.ring.Ringing())
	assert.False(t, e.ring.Sounding())
}

func TestEngineAutoSilenceMarksMissed(t *testing.T) {
	out := mocks.NewMockOutput(t)
	out.EXPECT().Play("file:///tones/chime.ogg", true, ringer.MaxVolume).Return(ringer.Handle(1), nil).Once()
	out.EXPECT().Stop(ringer.Handle(1)).Return(nil).Once()

	e := newEngine(t, out, ringer.AutoSilence(30*time.Second))
	id := e.start(t, time.Minute)

	e.c.Advance(time.Minute)
	assert.Equal(t, timer.StateExpired, e.state(t, id))

	e.c.Advance(30 * time.Second)
	assert.Equal(t, timer.StateMissed, e.state(t, id))
	assert.False(t, e.ring.Sounding())
	assert.Len(t, e.reg.MissedTimers(), 1)
}

func TestEngineDueOnRebootExpiresImmediately(t *testing.T) {
	out := mocks.NewMockOutput(t)
	out.EXPECT().Play("file:///tones/chime.ogg", true, ringer.MaxVolume).Return(ringer.Handle(1), nil).Once()

	e := newEngine(t, out, ringer.AutoSilenceNever)
	id := e.start(t, time.Minute)

	// Ten seconds overdue is within the missed threshold, so the scheduler
	// expires the timer as soon as it is re-armed.
	e.c.Reboot(70 * time.Second)
	require.NoError(t, e.reg.AfterReboot())
	assert.Equal(t, timer.StateExpired, e.state(t, id))
	assert.True(t, e.ring.Sounding())
}

func mustTimer(t *testing.T, reg *registry.Registry, id int) timer.Timer {
	t.Helper()
	tm, ok := reg.Timer(id)
	require.True(t, ok)
	return tm
}
