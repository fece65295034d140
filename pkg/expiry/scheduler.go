// Package expiry keeps exactly one wake-up registered for the next timer
// that will run out.
//
// After every change to the set of running timers the owner calls
// Scheduler.Update with the full timer list. The scheduler then either
// cancels its registration (nothing running), hands a timer that is already
// due straight to the expiration handler, bridges a near-term expiration
// with a wake lock and an in-process retry, or registers one host alarm for
// the expiration instant.
//
// The Scheduler is not safe for concurrent use. Update, Deliver and Close
// must all run on the goroutine that owns the timers; the Executor passed in
// Config must post onto that same goroutine.
package expiry

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/timer"
	"github.com/deskclock/deskclock-go/pkg/wakelock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

// DefaultGuardWindow is how close an expiration must be for the scheduler to
// skip the host alarm and hold a wake lock instead.
const DefaultGuardWindow = 5 * time.Second

// WakeLockTag identifies the scheduler's wake lock holds.
const WakeLockTag = "expiry-guard"

// Config configures a Scheduler.
type Config struct {
	Clock    clock.Clock
	Alarms   Alarms
	WakeLock wakelock.WakeLock

	// Executor runs the guard-window retry. It must post onto the goroutine
	// that owns the timers.
	Executor worker.Executor

	// Expire is called synchronously for a running timer that is already due.
	Expire func(t timer.Timer)

	// Resync is called when an alarm or a guard retry fires. It should
	// expire what is due and call Update again.
	Resync func()

	// GuardWindow defaults to DefaultGuardWindow.
	GuardWindow time.Duration

	Logger *slog.Logger
}

// Scheduler maintains at most one outstanding wake-up.
type Scheduler struct {
	cfg Config

	// alarm is the token of the registered host alarm, if any.
	alarm string

	// cancelGuard is set while a guard retry is pending; the wake lock is
	// held exactly as long.
	cancelGuard worker.Cancel

	degraded atomic.Bool
}

// NewScheduler creates a scheduler with nothing registered.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.GuardWindow <= 0 {
		cfg.GuardWindow = DefaultGuardWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Expire == nil {
		cfg.Expire = func(timer.Timer) {}
	}
	if cfg.Resync == nil {
		cfg.Resync = func() {}
	}
	return &Scheduler{cfg: cfg}
}

// Next returns the running timer with the earliest expiration instant.
// Ties go to the lowest id.
func Next(timers []timer.Timer) (timer.Timer, bool) {
	var (
		next  timer.Timer
		found bool
	)
	for _, t := range timers {
		if !t.IsRunning() {
			continue
		}
		if !found ||
			t.ExpirationTime() < next.ExpirationTime() ||
			(t.ExpirationTime() == next.ExpirationTime() && t.ID() < next.ID()) {
			next = t
			found = true
		}
	}
	return next, found
}

// Update re-evaluates the wake-up for the given timers.
func (s *Scheduler) Update(timers []timer.Timer) {
	s.stopGuard()

	next, ok := Next(timers)
	if !ok {
		s.cancelAlarm()
		return
	}

	now := s.cfg.Clock.Elapsed()
	at := next.ExpirationTime()
	switch {
	case at <= now:
		s.cancelAlarm()
		s.cfg.Logger.Debug("expiry: timer already due", "timer", next.ID())
		// Expire usually re-enters Update; nothing may follow it here.
		s.cfg.Expire(next)
	case at-now < s.cfg.GuardWindow:
		s.cancelAlarm()
		s.startGuard(next.ID(), at-now)
	default:
		s.scheduleAlarm(next.ID(), at)
	}
}

// Deliver is the entry point for a host alarm firing.
func (s *Scheduler) Deliver(token string) {
	if token == s.alarm {
		s.alarm = ""
	} else {
		s.cfg.Logger.Debug("expiry: stale alarm delivered", "token", token)
	}
	s.cfg.Resync()
}

// Degraded reports whether the last host alarm registration failed, in which
// case a running timer may not wake the host.
func (s *Scheduler) Degraded() bool {
	return s.degraded.Load()
}

// Armed returns the registered host alarm token, or "" if none.
func (s *Scheduler) Armed() string {
	return s.alarm
}

// Guarding reports whether a guard-window retry is pending.
func (s *Scheduler) Guarding() bool {
	return s.cancelGuard != nil
}

// Close drops every registration and releases the wake lock.
func (s *Scheduler) Close() {
	s.stopGuard()
	s.cancelAlarm()
}

func (s *Scheduler) scheduleAlarm(id int, at time.Duration) {
	token := alarmToken(id, at)
	if s.alarm == token {
		return
	}
	s.cancelAlarm()

	if err := s.cfg.Alarms.ScheduleAt(at, token); err != nil {
		s.degraded.Store(true)
		s.cfg.Logger.Warn("expiry: alarm registration failed, timer may not wake the host",
			"timer", id, "at", at, "error", err)
		return
	}
	s.degraded.Store(false)
	s.alarm = token
	s.cfg.Logger.Debug("expiry: alarm registered", "timer", id, "at", at)
}

func (s *Scheduler) cancelAlarm() {
	if s.alarm == "" {
		return
	}
	token := s.alarm
	s.alarm = ""
	if err := s.cfg.Alarms.Cancel(token); err != nil {
		s.cfg.Logger.Warn("expiry: alarm cancel failed", "token", token, "error", err)
	}
}

func (s *Scheduler) startGuard(id int, in time.Duration) {
	s.cfg.WakeLock.Acquire(WakeLockTag)
	s.cfg.Logger.Debug("expiry: guarding near-term expiration", "timer", id, "in", in)

	s.cancelGuard = s.cfg.Executor.PostDelayed(in, func() {
		s.cancelGuard = nil
		s.cfg.WakeLock.Release(WakeLockTag)
		s.cfg.Resync()
	})
}

func (s *Scheduler) stopGuard() {
	if s.cancelGuard == nil {
		return
	}
	s.cancelGuard()
	s.cancelGuard = nil
	s.cfg.WakeLock.Release(WakeLockTag)
}

func alarmToken(id int, at time.Duration) string {
	return fmt.Sprintf("timer-%d@%d", id, at.Milliseconds())
}
