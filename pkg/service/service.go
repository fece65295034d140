package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/expiry"
	"github.com/deskclock/deskclock-go/pkg/log"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/timer"
	"github.com/deskclock/deskclock-go/pkg/wakelock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

// ClockService runs the timer engine.
type ClockService struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	state ServiceState

	model      *worker.Loop
	background *worker.Loop
	lock       *wakelock.Counter
	alarms     expiry.Alarms
	sched      *expiry.Scheduler
	ring       *ringer.Ringer
	reg        *registry.Registry
	journal    *log.Listener
	watcher    *timeSetWatcher
}

// NewClockService validates cfg and wires the engine. Nothing runs until
// Start.
func NewClockService(cfg Config) (*ClockService, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: no store", ErrInvalidConfig)
	}
	if cfg.Output == nil {
		return nil, fmt.Errorf("%w: no audio output", ErrInvalidConfig)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TimeSetCheckInterval == 0 {
		cfg.TimeSetCheckInterval = DefaultTimeSetCheckInterval
	}
	if cfg.TimeSetTolerance <= 0 {
		cfg.TimeSetTolerance = DefaultTimeSetTolerance
	}

	s := &ClockService{
		cfg:    cfg,
		logger: cfg.Logger,
		state:  StateIdle,
		lock:   wakelock.NewCounter(cfg.Logger),
	}

	s.model = worker.NewLoop(worker.LoopConfig{Name: "model", Clock: cfg.Clock, Logger: cfg.Logger})
	s.background = worker.NewLoop(worker.LoopConfig{Name: "background", Clock: cfg.Clock, Logger: cfg.Logger})

	s.alarms = cfg.Alarms
	if s.alarms == nil {
		s.alarms = expiry.NewClockAlarms(cfg.Clock, s.deliverAlarm)
	}

	s.reg = registry.New(cfg.Store, cfg.Clock, registry.Options{
		MissedThreshold: cfg.MissedThreshold,
		Sort:            cfg.Sort,
		Logger:          cfg.Logger,
	})

	s.sched = expiry.NewScheduler(expiry.Config{
		Clock:       cfg.Clock,
		Alarms:      s.alarms,
		WakeLock:    s.lock,
		Executor:    s.model,
		Expire:      s.expire,
		Resync:      s.reg.Rearm,
		GuardWindow: cfg.GuardWindow,
		Logger:      cfg.Logger,
	})
	s.reg.SetScheduler(s.sched)

	s.ring = ringer.New(ringer.Config{
		Output:            cfg.Output,
		Clock:             cfg.Clock,
		WakeLock:          s.lock,
		Model:             s.model,
		Background:        s.background,
		Ringtone:          cfg.Ringtone,
		Crescendo:         cfg.Crescendo,
		CrescendoInterval: cfg.CrescendoInterval,
		CrescendoRetries:  cfg.CrescendoRetries,
		AutoSilence:       cfg.AutoSilence,
		OnSilenced:        s.silenced,
		Logger:            cfg.Logger,
	})
	s.reg.SetRinger(s.ring)

	s.journal = log.NewListener(cfg.Journal, cfg.Clock)
	s.reg.AddTimerListener(s.journal)
	s.reg.AddStopwatchListener(s.journal)
	if cfg.Notifier != nil {
		s.reg.SetNotifier(cfg.Notifier)
	}

	if cfg.TimeSetCheckInterval > 0 {
		s.watcher = newTimeSetWatcher(cfg.Clock, s.background,
			cfg.TimeSetCheckInterval, cfg.TimeSetTolerance, s.timeSet)
	}
	return s, nil
}

// Start loads the persisted state, recovers it from the restart and starts
// the time-set watcher.
func (s *ClockService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	s.mu.Unlock()

	err := s.model.Do(ctx, func() error {
		s.reg.Load()
		s.journal.Reboot()
		return s.reg.AfterReboot()
	})
	if err != nil {
		err = multierr.Append(fmt.Errorf("service: start: %w", err), s.shutdown())
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		return err
	}

	if s.watcher != nil {
		s.watcher.start()
	}

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Info("service: started", "session", s.journal.SessionID())
	return nil
}

// Stop shuts the engine down: the watcher, scheduler and ringer first, then
// both loops, the journal and the store.
func (s *ClockService) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	s.mu.Unlock()

	err := s.shutdown()

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("service: stopped")
	return err
}

func (s *ClockService) shutdown() error {
	if s.watcher != nil {
		s.watcher.stop()
	}

	var err error
	err = multierr.Append(err, s.model.Do(context.Background(), func() error {
		s.sched.Close()
		return nil
	}))
	s.ring.StopAll()

	s.background.Stop()
	s.model.Stop()

	if c, ok := s.cfg.Journal.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	err = multierr.Append(err, s.cfg.Store.Close())
	return err
}

// State returns the current service state.
func (s *ClockService) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Do runs fn with the registry on the model loop and waits for it.
// It must not be called from the model loop, e.g. from a listener.
func (s *ClockService) Do(ctx context.Context, fn func(reg *registry.Registry) error) error {
	if s.State() != StateRunning {
		return ErrNotStarted
	}
	return s.model.Do(ctx, func() error { return fn(s.reg) })
}

// Clock returns the clock the engine runs on.
func (s *ClockService) Clock() clock.Clock {
	return s.cfg.Clock
}

// SessionID returns the journal session of this run.
func (s *ClockService) SessionID() string {
	return s.journal.SessionID()
}

// Degraded reports whether the last alarm registration failed.
func (s *ClockService) Degraded() bool {
	return s.sched.Degraded()
}

// Ringing returns the ids of the timers currently ringing.
func (s *ClockService) Ringing() []int {
	return s.ring.Ringing()
}

// Sounding reports whether the ringer is playing.
func (s *ClockService) Sounding() bool {
	return s.ring.Sounding()
}

// WakeLockHeld reports whether anything holds the wake lock.
func (s *ClockService) WakeLockHeld() bool {
	return s.lock.Held()
}

// SetRingtone changes the ringtone for the next alarm.
func (s *ClockService) SetRingtone(uri string) {
	s.ring.SetRingtone(uri)
}

// SetCrescendo changes the crescendo duration for the next alarm.
func (s *ClockService) SetCrescendo(d time.Duration) {
	s.ring.SetCrescendo(d)
}

// SetAutoSilence changes the auto-silence setting for the next alarm.
func (s *ClockService) SetAutoSilence(a ringer.AutoSilence) {
	s.ring.SetAutoSilence(a)
}

// deliverAlarm runs on the clock goroutine.
func (s *ClockService) deliverAlarm(token string) {
	if !s.model.Post(func() { s.sched.Deliver(token) }) {
		s.logger.Debug("service: alarm after stop dropped", "token", token)
	}
}

// expire runs on the model loop.
func (s *ClockService) expire(t timer.Timer) {
	if err := s.reg.ExpireTimer(t.ID()); err != nil {
		s.logger.Error("service: expire timer failed", "timer", t.ID(), "error", err)
		s.journal.Error("expire", err)
	}
}

// silenced runs on the model loop.
func (s *ClockService) silenced() {
	if err := s.reg.SilenceExpiredTimers(); err != nil {
		s.logger.Error("service: silence expired timers failed", "error", err)
		s.journal.Error("silence", err)
	}
}

// timeSet runs on the background loop.
func (s *ClockService) timeSet(drift time.Duration) {
	s.logger.Info("service: wall clock changed", "drift", drift)
	s.model.Post(func() {
		s.journal.TimeSet()
		if err := s.reg.AfterTimeSet(); err != nil {
			s.logger.Error("service: time set fixup failed", "error", err)
			s.journal.Error("time set", err)
		}
	})
}
