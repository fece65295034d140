package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock driven explicitly by tests.
//
// Callbacks registered with AfterFunc run synchronously inside Advance, in
// due order, with the clock positioned at their due time. Manual is safe for
// concurrent use, but callbacks are never run while the internal lock is
// held, so they may call back into the clock.
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
	wall    time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	clock   *Manual
	due     time.Duration
	seq     uint64
	f       func()
	stopped bool
}

// NewManual creates a manual clock with the given monotonic and wall readings.
func NewManual(elapsed time.Duration, wall time.Time) *Manual {
	return &Manual{
		elapsed: elapsed,
		wall:    wall.Round(0),
	}
}

// Elapsed returns the current monotonic reading.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// Now returns the current wall-clock reading.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall
}

// AfterFunc registers f to run once the monotonic clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{clock: m, due: m.elapsed + d, seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

// Pending returns the number of callbacks that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves both readings forward by d, firing due callbacks on the way.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.elapsed + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.wall = m.wall.Add(target - m.elapsed)
			m.elapsed = target
			m.mu.Unlock()
			return
		}
		m.wall = m.wall.Add(next.due - m.elapsed)
		m.elapsed = next.due
		m.removeLocked(next)
		m.mu.Unlock()

		next.f()
	}
}

// SetWall changes the wall clock without touching the monotonic clock,
// as a user editing the system time would.
func (m *Manual) SetWall(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = t.Round(0)
}

// JumpWall shifts the wall clock by d without touching the monotonic clock.
func (m *Manual) JumpWall(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
}

// Reboot simulates a restart: the monotonic clock restarts at zero, the wall
// clock moves forward by downtime and all pending callbacks are dropped.
func (m *Manual) Reboot(downtime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(downtime)
	m.elapsed = 0
	for _, t := range m.pending {
		t.stopped = true
	}
	m.pending = nil
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	if m.pending[0].due > target {
		return nil
	}
	return m.pending[0]
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			t.stopped = true
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.clock.removeLocked(t)
	return true
}

// Compile-time interface satisfaction check.
var _ Clock = (*Manual)(nil)
