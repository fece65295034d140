package worker

import (
	"sync/atomic"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

const (
	delayedWaiting int32 = iota
	delayedRan
	delayedCancelled
)

// pending tracks one delayed function so it runs at most once and never
// after it was cancelled.
type pending struct {
	state atomic.Int32
}

func (p *pending) run(fn func()) {
	if p.state.CompareAndSwap(delayedWaiting, delayedRan) {
		fn()
	}
}

func (p *pending) cancelFunc(t clock.Timer) Cancel {
	return func() bool {
		t.Stop()
		return p.state.CompareAndSwap(delayedWaiting, delayedCancelled)
	}
}
