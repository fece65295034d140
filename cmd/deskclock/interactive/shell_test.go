package interactive

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskclock/deskclock-go/pkg/audio"
	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/service"
)

type harness struct {
	clock *clock.Manual
	svc   *service.ClockService
	shell *Shell
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := clock.NewManual(time.Hour, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	out := &bytes.Buffer{}
	sh := newShell(out)

	cfg := service.DefaultConfig()
	cfg.Store = persistence.NewMemoryStore()
	cfg.Output = audio.NewBell(io.Discard, c, time.Second)
	cfg.Clock = c
	cfg.AutoSilence = ringer.AutoSilenceNever
	cfg.TimeSetCheckInterval = -1
	cfg.Notifier = sh.Notifier()

	svc, err := service.NewClockService(cfg)
	require.NoError(t, err)
	sh.Attach(svc)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop() })

	return &harness{clock: c, svc: svc, shell: sh, out: out}
}

// drain waits for work already posted to the model loop.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, h.svc.Do(context.Background(), func(*registry.Registry) error { return nil }))
}

// run executes line and returns what it printed.
func (h *harness) run(t *testing.T, line string) string {
	t.Helper()
	h.drain(t)
	h.out.Reset()
	require.True(t, h.shell.exec(context.Background(), line))
	return h.out.String()
}

func TestShellTimerLifecycle(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "add 5m tea"), "Added timer 1 (5:00)")
	assert.Contains(t, h.run(t, "list"), "RESET")

	assert.Empty(t, h.run(t, "start 1"))
	h.clock.Advance(2 * time.Minute)
	out := h.run(t, "list")
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "3:00")
	assert.Contains(t, out, "tea")

	h.run(t, "pause 1")
	h.run(t, "plus 1")
	out = h.run(t, "list")
	assert.Contains(t, out, "PAUSED")
	assert.Contains(t, out, "4:00")

	h.run(t, "label 1 green tea")
	assert.Contains(t, h.run(t, "list"), "green tea")

	h.run(t, "delete 1")
	assert.Contains(t, h.run(t, "list"), "No timers.")
}

func TestShellExpiryAndDismiss(t *testing.T) {
	h := newHarness(t)

	h.run(t, "add 90")
	h.run(t, "start 1")
	h.clock.Advance(90 * time.Second)

	out := h.run(t, "expired")
	assert.Contains(t, out, "EXPIRED")
	assert.Equal(t, []int{1}, h.svc.Ringing())

	h.run(t, "silence")
	assert.Contains(t, h.run(t, "missed"), "MISSED")
	assert.Empty(t, h.svc.Ringing())

	h.run(t, "dismiss")
	assert.Contains(t, h.run(t, "list"), "RESET")
	assert.Contains(t, h.run(t, "missed"), "No timers.")
}

func TestShellNotifierAnnouncesRinging(t *testing.T) {
	h := newHarness(t)

	h.run(t, "add 10s")
	h.run(t, "start 1")
	h.clock.Advance(10 * time.Second)
	h.drain(t)
	assert.Contains(t, h.out.String(), "*** Ringing: 1")

	out := h.run(t, "status")

	assert.Contains(t, out, "Ringing:   1")
	assert.Contains(t, out, "Wake lock: true")
}

func TestShellStopwatch(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "sw lap"), "No lap recorded")

	h.run(t, "sw start")
	h.clock.Advance(10 * time.Second)
	assert.Contains(t, h.run(t, "sw lap"), "Lap 1: 0:10")
	h.clock.Advance(5 * time.Second)
	h.run(t, "sw pause")

	out := h.run(t, "sw show")
	assert.Contains(t, out, "Stopwatch: PAUSED 0:15")
	assert.Contains(t, out, "Current lap: 0:05")

	h.run(t, "sw reset")
	assert.Contains(t, h.run(t, "sw show"), "Stopwatch: RESET 0:00")
}

func TestShellRebootFixup(t *testing.T) {
	h := newHarness(t)

	h.run(t, "add 2m")
	h.run(t, "start 1")
	h.clock.Reboot(5 * time.Minute)
	h.run(t, "reboot")

	assert.Contains(t, h.run(t, "missed"), "MISSED")
}

func TestShellErrors(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "frobnicate"), "Unknown command")
	assert.Contains(t, h.run(t, "start"), "timer id required")
	assert.Contains(t, h.run(t, "start x"), "invalid timer id")
	assert.Contains(t, h.run(t, "start 42"), "unknown timer")
	assert.Contains(t, h.run(t, "add soon"), "invalid duration")
	assert.Contains(t, h.run(t, "add 0"), "Error:")
	assert.Contains(t, h.run(t, "sw fly"), "unknown stopwatch command")

	assert.False(t, h.shell.exec(context.Background(), "quit"))
	assert.True(t, h.shell.exec(context.Background(), "   "))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{5 * time.Minute, "5:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-90 * time.Second, "-1:30"},
		{1499 * time.Millisecond, "0:01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), tt.in.String())
	}
}
