package worker

import (
	"sync/atomic"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// Inline runs posted functions on the caller's goroutine and delayed ones
// from the clock's callback. Paired with clock.Manual it makes every
// asynchronous path deterministic.
type Inline struct {
	clock   clock.Clock
	stopped atomic.Bool
}

// NewInline creates an inline executor driven by c.
func NewInline(c clock.Clock) *Inline {
	return &Inline{clock: c}
}

func (e *Inline) Post(fn func()) bool {
	if e.stopped.Load() {
		return false
	}
	fn()
	return true
}

func (e *Inline) PostDelayed(d time.Duration, fn func()) Cancel {
	p := &pending{}
	t := e.clock.AfterFunc(d, func() {
		e.Post(func() { p.run(fn) })
	})
	return p.cancelFunc(t)
}

// Stop makes the executor reject further work.
func (e *Inline) Stop() {
	e.stopped.Store(true)
}

var _ Executor = (*Inline)(nil)
