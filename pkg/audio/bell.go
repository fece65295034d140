// Package audio provides ringer outputs for a terminal host: a bell that is
// always available and an external player command for real ringtones.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/ringer"
)

// DefaultBellInterval is the time between two bells.
const DefaultBellInterval = time.Second

// bel is the ASCII bell character.
const bel = "\a"

// Bell rings a terminal by writing BEL characters. It ignores the URI and
// cannot fail to start, which makes it the fallback tone.
type Bell struct {
	w        io.Writer
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	next    ringer.Handle
	playing map[ringer.Handle]*bellLoop
}

type bellLoop struct {
	looping bool
	volume  float64
	timer   clock.Timer
	rings   int
}

// NewBell creates a bell writing to w every interval.
func NewBell(w io.Writer, c clock.Clock, interval time.Duration) *Bell {
	if interval <= 0 {
		interval = DefaultBellInterval
	}
	return &Bell{
		w:        w,
		clock:    c,
		interval: interval,
		playing:  make(map[ringer.Handle]*bellLoop),
	}
}

func (b *Bell) Play(uri string, looping bool, volume float64) (ringer.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	h := b.next
	l := &bellLoop{looping: looping, volume: volume}
	b.playing[h] = l
	b.ringLocked(h, l)
	return h, nil
}

func (b *Bell) ringLocked(h ringer.Handle, l *bellLoop) {
	// A muted crescendo start should stay quiet until it is audible.
	if l.volume >= 0.05 {
		io.WriteString(b.w, bel)
	}
	l.rings++
	if !l.looping {
		delete(b.playing, h)
		return
	}
	l.timer = b.clock.AfterFunc(b.interval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.playing[h]; ok && cur == l {
			b.ringLocked(h, l)
		}
	})
}

func (b *Bell) SetVolume(h ringer.Handle, volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.playing[h]; ok {
		l.volume = volume
	}
	return nil
}

func (b *Bell) Stop(h ringer.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.playing[h]; ok {
		if l.timer != nil {
			l.timer.Stop()
		}
		delete(b.playing, h)
	}
	return nil
}

func (b *Bell) IsPlaying(h ringer.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.playing[h]
	return ok
}

// Duration returns one bell interval.
func (b *Bell) Duration(string) (time.Duration, error) {
	return b.interval, nil
}

// Rings returns how many times h has rung.
func (b *Bell) Rings(h ringer.Handle) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.playing[h]; ok {
		return l.rings
	}
	return 0
}

var _ ringer.Output = (*Bell)(nil)
