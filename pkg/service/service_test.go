package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/log"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeOutput is a thread-safe ringer output that always plays.
type fakeOutput struct {
	mu      sync.Mutex
	next    ringer.Handle
	playing map[ringer.Handle]bool
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{playing: make(map[ringer.Handle]bool)}
}

func (o *fakeOutput) Play(string, bool, float64) (ringer.Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	o.playing[o.next] = true
	return o.next, nil
}

func (o *fakeOutput) SetVolume(ringer.Handle, float64) error { return nil }

func (o *fakeOutput) Stop(h ringer.Handle) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.playing, h)
	return nil
}

func (o *fakeOutput) IsPlaying(h ringer.Handle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing[h]
}

func (o *fakeOutput) Duration(string) (time.Duration, error) { return time.Second, nil }

// recordingJournal keeps journal events in memory.
type recordingJournal struct {
	mu     sync.Mutex
	events []log.Event
	closed bool
}

func (j *recordingJournal) Log(e log.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *recordingJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

func (j *recordingJournal) count(kind log.Kind) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func testConfig(c clock.Clock, store persistence.Store) Config {
	cfg := DefaultConfig()
	cfg.Clock = c
	cfg.Store = store
	cfg.Output = newFakeOutput()
	cfg.AutoSilence = ringer.AutoSilenceNever
	cfg.TimeSetCheckInterval = -1
	return cfg
}

func startService(t *testing.T, cfg Config) *ClockService {
	t.Helper()
	svc, err := NewClockService(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	return svc
}

func addRunning(t *testing.T, svc *ClockService, length time.Duration) int {
	t.Helper()
	var id int
	err := svc.Do(context.Background(), func(reg *registry.Registry) error {
		tm, err := reg.Add(length, "", time.Minute, false)
		if err != nil {
			return err
		}
		id = tm.ID()
		return reg.Update(tm.Start(svc.Clock()))
	})
	require.NoError(t, err)
	return id
}

func timerState(t *testing.T, svc *ClockService, id int) timer.State {
	t.Helper()
	var state timer.State
	err := svc.Do(context.Background(), func(reg *registry.Registry) error {
		tm, ok := reg.Timer(id)
		if !ok {
			return registry.ErrUnknownTimer
		}
		state = tm.State()
		return nil
	})
	require.NoError(t, err)
	return state
}

func TestNewClockServiceValidatesConfig(t *testing.T) {
	_, err := NewClockService(Config{Output: newFakeOutput()})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClockService(Config{Store: persistence.NewMemoryStore()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestServiceLifecycle(t *testing.T) {
	c := clock.NewManual(time.Minute, epoch)
	journal := &recordingJournal{}
	cfg := testConfig(c, persistence.NewMemoryStore())
	cfg.Journal = journal

	svc, err := NewClockService(cfg)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, svc.State())
	assert.ErrorIs(t, svc.Stop(), ErrNotStarted)
	assert.ErrorIs(t, svc.Do(context.Background(), func(*registry.Registry) error { return nil }), ErrNotStarted)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, StateRunning, svc.State())
	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)
	assert.NotEmpty(t, svc.SessionID())
	assert.Equal(t, 1, journal.count(log.KindReboot))

	require.NoError(t, svc.Stop())
	assert.Equal(t, StateStopped, svc.State())
	assert.True(t, journal.closed)
	assert.ErrorIs(t, svc.Stop(), ErrNotStarted)
}

func TestServiceDoPropagatesErrors(t *testing.T) {
	svc := startService(t, testConfig(clock.NewManual(0, epoch), persistence.NewMemoryStore()))
	defer svc.Stop()

	boom := errors.New("boom")
	err := svc.Do(context.Background(), func(*registry.Registry) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestServiceAlarmExpiresTimer(t *testing.T) {
	c := clock.NewManual(time.Minute, epoch)
	svc := startService(t, testConfig(c, persistence.NewMemoryStore()))
	defer svc.Stop()

	id := addRunning(t, svc, time.Minute)
	assert.False(t, svc.Degraded())

	c.Advance(time.Minute)
	assert.Equal(t, timer.StateExpired, timerState(t, svc, id))
	assert.True(t, svc.Sounding())
	assert.Equal(t, []int{id}, svc.Ringing())
	assert.True(t, svc.WakeLockHeld())

	err := svc.Do(context.Background(), func(reg *registry.Registry) error {
		return reg.ResetExpiredTimers(true)
	})
	require.NoError(t, err)
	assert.False(t, svc.Sounding())
	assert.False(t, svc.WakeLockHeld())
}

func TestServiceGuardWindowExpiresTimer(t *testing.T) {
	c := clock.NewManual(time.Minute, epoch)
	svc := startService(t, testConfig(c, persistence.NewMemoryStore()))
	defer svc.Stop()

	id := addRunning(t, svc, 3*time.Second)
	assert.True(t, svc.WakeLockHeld(), "near-term expiration holds the wake lock")

	c.Advance(3 * time.Second)
	assert.Equal(t, timer.StateExpired, timerState(t, svc, id))
}

func TestServiceAutoSilence(t *testing.T) {
	c := clock.NewManual(time.Minute, epoch)
	cfg := testConfig(c, persistence.NewMemoryStore())
	cfg.AutoSilence = ringer.AutoSilence(30 * time.Second)
	svc := startService(t, cfg)
	defer svc.Stop()

	id := addRunning(t, svc, time.Minute)
	c.Advance(time.Minute)
	require.Equal(t, timer.StateExpired, timerState(t, svc, id))

	c.Advance(30 * time.Second)
	assert.Equal(t, timer.StateMissed, timerState(t, svc, id))
	assert.False(t, svc.Sounding())
}

func TestServiceRestartRecoversTimers(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.cbor")
	journalPath := filepath.Join(dir, "journal.tlog")
	c := clock.NewManual(time.Hour, epoch)

	open := func() Config {
		store, err := persistence.OpenFileStore(statePath)
		require.NoError(t, err)
		journal, err := log.NewFileLogger(journalPath)
		require.NoError(t, err)
		cfg := testConfig(c, store)
		cfg.Journal = journal
		return cfg
	}

	first := startService(t, open())
	overdue := addRunning(t, first, time.Minute)
	survivor := addRunning(t, first, time.Hour)
	require.NoError(t, first.Stop())

	c.Reboot(3 * time.Minute)

	second := startService(t, open())
	assert.Equal(t, timer.StateMissed, timerState(t, second, overdue))
	assert.Equal(t, timer.StateRunning, timerState(t, second, survivor))
	assert.NotEqual(t, first.SessionID(), second.SessionID())
	require.NoError(t, second.Stop())

	reader, err := log.NewReader(journalPath)
	require.NoError(t, err)
	defer reader.Close()

	sessions := map[string]bool{}
	kinds := map[log.Kind]int{}
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sessions[e.SessionID] = true
		kinds[e.Kind]++
	}
	assert.Len(t, sessions, 2)
	assert.Equal(t, 2, kinds[log.KindAdded])
	assert.Equal(t, 2, kinds[log.KindReboot])
}

func TestServiceDetectsTimeSet(t *testing.T) {
	c := clock.NewManual(time.Minute, epoch)
	journal := &recordingJournal{}
	cfg := testConfig(c, persistence.NewMemoryStore())
	cfg.Journal = journal
	cfg.TimeSetCheckInterval = time.Second
	svc := startService(t, cfg)
	defer svc.Stop()

	id := addRunning(t, svc, time.Hour)

	// Both clocks moving together is not a time change.
	c.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, journal.count(log.KindTimeSet))

	c.JumpWall(time.Hour)
	assert.Eventually(t, func() bool {
		c.Advance(time.Second)
		return journal.count(log.KindTimeSet) == 1
	}, 2*time.Second, 10*time.Millisecond)

	err := svc.Do(context.Background(), func(reg *registry.Registry) error {
		tm, _ := reg.Timer(id)
		assert.True(t, tm.IsRunning())
		assert.Less(t, c.Now().Sub(tm.LastWallClockTime()), 30*time.Minute)
		return nil
	})
	require.NoError(t, err)
}

func TestServiceNotifier(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	cfg := testConfig(clock.NewManual(0, epoch), persistence.NewMemoryStore())
	cfg.Notifier = registry.NotifierFunc(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	svc := startService(t, cfg)
	defer svc.Stop()

	mu.Lock()
	before := calls
	mu.Unlock()

	addRunning(t, svc, time.Minute)
	mu.Lock()
	defer mu.Unlock()
	// One for the add, one for the start.
	assert.Equal(t, before+2, calls)
}

func TestServiceStartFailure(t *testing.T) {
	store := persistence.NewMemoryStore()
	cfg := testConfig(clock.NewManual(time.Hour, epoch), store)

	// A running timer forces a write during the reboot fixup.
	tm, err := persistence.AddTimer(store, timer.New(0, time.Minute, "", time.Minute, false))
	require.NoError(t, err)
	require.NoError(t, persistence.UpdateTimer(store, tm.Start(cfg.Clock)))
	store.FailCommit = errors.New("read-only")

	svc, err := NewClockService(cfg)
	require.NoError(t, err)
	cfg.Clock.(*clock.Manual).Advance(time.Second)
	err = svc.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateStopped, svc.State())
}
