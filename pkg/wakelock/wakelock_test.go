package wakelock

import "testing"

func TestCounter(t *testing.T) {
	var changes []bool
	c := NewCounter(nil)
	c.OnChange = func(held bool) { changes = append(changes, held) }

	if c.Held() {
		t.Fatal("new counter is held")
	}

	c.Acquire("expiry")
	c.Acquire("ringer")
	c.Acquire("ringer")
	if got := c.HeldBy("ringer"); got != 2 {
		t.Errorf("HeldBy(ringer) = %d, want 2", got)
	}

	c.Release("ringer")
	c.Release("expiry")
	if !c.Held() {
		t.Error("Held() = false with one ringer hold left")
	}

	c.Release("ringer")
	if c.Held() {
		t.Error("Held() = true after all releases")
	}

	// Unbalanced release is ignored.
	c.Release("ringer")
	if c.Held() || c.HeldBy("ringer") != 0 {
		t.Error("unbalanced release changed the counter")
	}

	if len(changes) != 2 || !changes[0] || changes[1] {
		t.Errorf("OnChange calls = %v, want [true false]", changes)
	}
}
