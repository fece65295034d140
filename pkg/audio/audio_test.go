package audio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/wakelock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

func TestBellRingsUntilStopped(t *testing.T) {
	c := clock.NewManual(0, time.Unix(0, 0))
	var buf bytes.Buffer
	b := NewBell(&buf, c, time.Second)

	h, err := b.Play(ringer.FallbackURI, true, ringer.MaxVolume)
	require.NoError(t, err)
	assert.True(t, b.IsPlaying(h))
	assert.Equal(t, "\a", buf.String())

	c.Advance(3 * time.Second)
	assert.Equal(t, 4, b.Rings(h))

	require.NoError(t, b.Stop(h))
	assert.False(t, b.IsPlaying(h))
	c.Advance(5 * time.Second)
	assert.Equal(t, 4, buf.Len())
}

func TestBellQuietAtLowVolume(t *testing.T) {
	c := clock.NewManual(0, time.Unix(0, 0))
	var buf bytes.Buffer
	b := NewBell(&buf, c, time.Second)

	h, err := b.Play(ringer.FallbackURI, true, ringer.MinVolume)
	require.NoError(t, err)
	c.Advance(2 * time.Second)
	assert.Equal(t, 0, buf.Len(), "a quiet start makes no sound")

	require.NoError(t, b.SetVolume(h, ringer.MaxVolume))
	c.Advance(time.Second)
	assert.Equal(t, 1, buf.Len())

	d, err := b.Duration("anything")
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestRouter(t *testing.T) {
	c := clock.NewManual(0, time.Unix(0, 0))
	var fallbackBuf, primaryBuf bytes.Buffer
	fallback := NewBell(&fallbackBuf, c, time.Second)
	primary := NewBell(&primaryBuf, c, 2*time.Second)
	r := NewRouter(fallback, primary)

	hf, err := r.Play(ringer.FallbackURI, true, ringer.MaxVolume)
	require.NoError(t, err)
	hp, err := r.Play("file:///tones/chime.ogg", true, ringer.MaxVolume)
	require.NoError(t, err)
	assert.NotEqual(t, hf, hp)

	assert.Equal(t, "\a", fallbackBuf.String())
	assert.Equal(t, "\a", primaryBuf.String())

	d, err := r.Duration("file:///tones/chime.ogg")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	require.NoError(t, r.Stop(hp))
	assert.False(t, r.IsPlaying(hp))
	assert.True(t, r.IsPlaying(hf))
	assert.NoError(t, r.Stop(hp), "stopping twice is harmless")
}

func TestRouterWithoutPrimary(t *testing.T) {
	c := clock.NewManual(0, time.Unix(0, 0))
	var buf bytes.Buffer
	r := NewRouter(NewBell(&buf, c, time.Second), nil)

	_, err := r.Play("file:///tones/chime.ogg", false, ringer.MaxVolume)
	require.NoError(t, err)
	assert.Equal(t, "\a", buf.String())
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/tones/a.ogg", "/tones/a.ogg", false},
		{"file:///tones/a.ogg", "/tones/a.ogg", false},
		{"https://example.com/a.ogg", "", true},
	}
	for _, tt := range tests {
		got, err := LocalPath(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCommandExpand(t *testing.T) {
	c := NewCommand(CommandConfig{Args: []string{"play", "--volume={volume}", "{uri}"}})
	assert.Equal(t, []string{"play", "--volume=50", "/a.ogg"}, c.expand("/a.ogg", 0.5))
}

func TestCommandPlayFailures(t *testing.T) {
	_, err := NewCommand(CommandConfig{}).Play("/a.ogg", true, ringer.MaxVolume)
	assert.Error(t, err)

	_, err = NewCommand(CommandConfig{Args: []string{"definitely-not-a-player-binary"}}).Play("/a.ogg", true, ringer.MaxVolume)
	assert.Error(t, err)

	_, err = NewCommand(CommandConfig{Args: []string{"sleep", "1"}}).Play(filepath.Join(t.TempDir(), "missing.ogg"), true, ringer.MaxVolume)
	assert.Error(t, err)
}

func TestCommandPlayAndStop(t *testing.T) {
	tone := filepath.Join(t.TempDir(), "tone.ogg")
	require.NoError(t, os.WriteFile(tone, []byte("ogg"), 0644))

	c := NewCommand(CommandConfig{
		Args:    []string{"sleep", "5"},
		Lengths: map[string]time.Duration{tone: 5 * time.Second},
	})
	h, err := c.Play(tone, true, ringer.MaxVolume)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return c.IsPlaying(h) }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.SetVolume(h, 0.3))
	require.NoError(t, c.Stop(h))
	assert.False(t, c.IsPlaying(h))

	d, err := c.Duration(tone)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = c.Duration("other")
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

// lockedBuffer is a bytes.Buffer safe for a writer on another goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func writeTone(t *testing.T) string {
	t.Helper()
	tone := filepath.Join(t.TempDir(), "tone.ogg")
	require.NoError(t, os.WriteFile(tone, []byte("not really ogg"), 0644))
	return tone
}

func TestCommandReportsPlayerFailure(t *testing.T) {
	tone := writeTone(t)
	c := NewCommand(CommandConfig{Args: []string{"sh", "-c", "exit 1", "{uri}"}})

	failed := make(chan ringer.Handle, 1)
	c.OnFailure(func(h ringer.Handle, err error) {
		assert.Error(t, err)
		failed <- h
	})

	h, err := c.Play(tone, true, ringer.MaxVolume)
	require.NoError(t, err)

	select {
	case got := <-failed:
		assert.Equal(t, h, got)
	case <-time.After(5 * time.Second):
		t.Fatal("player failure was not reported")
	}
	assert.False(t, c.IsPlaying(h))
}

func TestCommandStopIsNotAFailure(t *testing.T) {
	tone := writeTone(t)
	c := NewCommand(CommandConfig{Args: []string{"sleep", "5"}})
	c.OnFailure(func(ringer.Handle, error) { t.Error("stopped player reported as failed") })

	h, err := c.Play(tone, true, ringer.MaxVolume)
	require.NoError(t, err)
	require.NoError(t, c.Stop(h))
}

func TestRouterForwardsFailure(t *testing.T) {
	clk := clock.NewManual(0, time.Unix(0, 0))
	tone := writeTone(t)
	player := NewCommand(CommandConfig{Args: []string{"sh", "-c", "exit 1", "{uri}"}})
	r := NewRouter(NewBell(io.Discard, clk, time.Second), player)

	failed := make(chan ringer.Handle, 1)
	r.OnFailure(func(h ringer.Handle, _ error) { failed <- h })

	// Occupy handle 1 on the router so outer and inner handles differ.
	_, err := r.Play(ringer.FallbackURI, true, ringer.MaxVolume)
	require.NoError(t, err)
	h, err := r.Play(tone, true, ringer.MaxVolume)
	require.NoError(t, err)

	select {
	case got := <-failed:
		assert.Equal(t, h, got)
	case <-time.After(5 * time.Second):
		t.Fatal("failure was not forwarded")
	}
	assert.False(t, r.IsPlaying(h))
}

func TestRingerFallsBackWhenPlayerDies(t *testing.T) {
	clk := clock.NewManual(0, time.Unix(0, 0))
	var bells lockedBuffer
	tone := writeTone(t)
	out := NewRouter(
		NewBell(&bells, clk, time.Second),
		NewCommand(CommandConfig{Args: []string{"sh", "-c", "exit 1", "{uri}"}}),
	)

	exec := worker.NewInline(clk)
	lock := wakelock.NewCounter(nil)
	r := ringer.New(ringer.Config{
		Output:      out,
		Clock:       clk,
		WakeLock:    lock,
		Model:       exec,
		Background:  exec,
		Ringtone:    "file://" + tone,
		AutoSilence: ringer.AutoSilenceNever,
	})

	r.Start(1)
	assert.Eventually(t, func() bool { return bells.Len() > 0 }, 5*time.Second, 10*time.Millisecond,
		"the bell takes over from the dead player")
	assert.True(t, r.Sounding())
	assert.True(t, lock.Held())

	r.StopAll()
	assert.False(t, lock.Held())
}
