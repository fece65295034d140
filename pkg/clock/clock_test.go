package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSystemClockMonotonic(t *testing.T) {
	c := System()

	first := c.Elapsed()
	second := c.Elapsed()
	if second < first {
		t.Errorf("Elapsed() went backwards: %v then %v", first, second)
	}
	if c.Now().IsZero() {
		t.Error("Now() returned zero time")
	}
}

func TestSystemClockAfterFunc(t *testing.T) {
	c := System()
	done := make(chan struct{})

	c.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AfterFunc callback did not fire")
	}
}

func TestManualAdvance(t *testing.T) {
	m := NewManual(time.Minute, epoch)

	m.Advance(30 * time.Second)

	if got := m.Elapsed(); got != 90*time.Second {
		t.Errorf("Elapsed() = %v, want 90s", got)
	}
	if got := m.Now(); !got.Equal(epoch.Add(30 * time.Second)) {
		t.Errorf("Now() = %v, want %v", got, epoch.Add(30*time.Second))
	}
}

func TestManualAfterFuncOrder(t *testing.T) {
	m := NewManual(0, epoch)
	var fired []string
	var firedAt []time.Duration

	m.AfterFunc(3*time.Second, func() {
		fired = append(fired, "c")
		firedAt = append(firedAt, m.Elapsed())
	})
	m.AfterFunc(time.Second, func() {
		fired = append(fired, "a")
		firedAt = append(firedAt, m.Elapsed())
	})
	m.AfterFunc(time.Second, func() {
		fired = append(fired, "b")
		firedAt = append(firedAt, m.Elapsed())
	})

	m.Advance(2 * time.Second)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", fired)
	}
	if firedAt[0] != time.Second {
		t.Errorf("first callback saw Elapsed() = %v, want 1s", firedAt[0])
	}

	m.Advance(time.Second)
	if len(fired) != 3 || fired[2] != "c" {
		t.Fatalf("fired = %v, want [a b c]", fired)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestManualAfterFuncReentrant(t *testing.T) {
	m := NewManual(0, epoch)
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 5 {
			m.AfterFunc(100*time.Millisecond, tick)
		}
	}
	m.AfterFunc(100*time.Millisecond, tick)

	m.Advance(time.Second)

	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(0, epoch)
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Error("Stop() = false on pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true")
	}

	m.Advance(2 * time.Second)
	if fired {
		t.Error("stopped callback fired")
	}
}

func TestManualWallChangesDoNotMoveMonotonic(t *testing.T) {
	m := NewManual(time.Hour, epoch)

	m.JumpWall(-10 * time.Minute)
	m.SetWall(epoch.Add(24 * time.Hour))

	if got := m.Elapsed(); got != time.Hour {
		t.Errorf("Elapsed() = %v after wall change, want 1h", got)
	}
	if got := m.Now(); !got.Equal(epoch.Add(24 * time.Hour)) {
		t.Errorf("Now() = %v", got)
	}
}

func TestManualReboot(t *testing.T) {
	m := NewManual(time.Hour, epoch)
	fired := false
	m.AfterFunc(time.Second, func() { fired = true })

	m.Reboot(5 * time.Minute)
	m.Advance(time.Minute)

	if fired {
		t.Error("callback survived reboot")
	}
	if got := m.Elapsed(); got != time.Minute {
		t.Errorf("Elapsed() = %v, want 1m", got)
	}
	if got := m.Now(); !got.Equal(epoch.Add(6 * time.Minute)) {
		t.Errorf("Now() = %v, want %v", got, epoch.Add(6*time.Minute))
	}
}
