// Package worker provides the executors the clock engine runs on.
//
// The registry is not safe for concurrent use; every call into it is
// marshalled onto a single Loop (the model loop). Slow or periodic work such
// as the ringer crescendo runs on a second Loop so it never delays model
// updates.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
)

// ErrStopped is returned when work is submitted to a stopped loop.
var ErrStopped = errors.New("worker stopped")

// Cancel prevents a delayed function from running. It reports whether the
// function was still pending.
type Cancel func() bool

// Executor runs functions asynchronously.
type Executor interface {
	// Post queues fn. It returns false if the executor no longer accepts work.
	Post(fn func()) bool

	// PostDelayed queues fn once d has elapsed.
	PostDelayed(d time.Duration, fn func()) Cancel
}

// LoopConfig configures a Loop.
type LoopConfig struct {
	// Name identifies the loop in logs.
	Name string

	// Clock drives PostDelayed. Defaults to clock.System().
	Clock clock.Clock

	// Logger receives panics recovered from posted functions.
	Logger *slog.Logger
}

// Loop runs posted functions one at a time on a dedicated goroutine, in
// the order they were posted.
type Loop struct {
	name   string
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewLoop starts a loop goroutine.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	l := &Loop{
		name:   cfg.Name,
		clock:  cfg.Clock,
		logger: cfg.Logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Post queues fn. The queue is unbounded so posting from the loop itself
// never blocks.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// PostDelayed queues fn after d. Cancelling after the delay elapsed but
// before fn ran still prevents it from running.
func (l *Loop) PostDelayed(d time.Duration, fn func()) Cancel {
	p := &pending{}
	t := l.clock.AfterFunc(d, func() {
		l.Post(func() { p.run(fn) })
	})
	return p.cancelFunc(t)
}

// Do runs fn on the loop and waits for its result. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects further work, runs what is already queued and waits for the
// loop goroutine to exit. It must not be called from the loop goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for range l.wake {
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				stopped := l.stopped
				l.mu.Unlock()
				if stopped {
					return
				}
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			l.call(fn)
		}
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("worker: recovered panic", "loop", l.name, "panic", r)
		}
	}()
	fn()
}

var _ Executor = (*Loop)(nil)
