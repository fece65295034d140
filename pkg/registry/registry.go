package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/stopwatch"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// DefaultMissedThreshold is how far overdue a running timer may be after a
// reboot or time change before it is marked missed instead of expired.
const DefaultMissedThreshold = -60 * time.Second

// Registry errors.
var (
	ErrUnknownTimer = errors.New("unknown timer")
	ErrNotLoaded    = errors.New("registry not loaded")
)

// Scheduler keeps the host wake-up in line with the running timers.
// It is satisfied by *expiry.Scheduler.
type Scheduler interface {
	Update(timers []timer.Timer)
}

// Ringer sounds the alarm for expired timers.
// It is satisfied by *ringer.Ringer.
type Ringer interface {
	Start(id int)
	Stop(id int)
}

// Options configures a Registry. The zero value is usable.
type Options struct {
	// MissedThreshold defaults to DefaultMissedThreshold. Positive values
	// are negated.
	MissedThreshold time.Duration

	// Sort orders reset timers in the expired and missed views.
	Sort timer.Sort

	Scheduler Scheduler
	Ringer    Ringer
	Logger    *slog.Logger
}

// Registry is the in-memory cache and orchestrator of timers and the
// stopwatch. It is not safe for concurrent use.
type Registry struct {
	store persistence.Store
	clock clock.Clock
	opts  Options

	loaded bool
	timers []timer.Timer

	expired view
	missed  view

	stopwatch stopwatch.Stopwatch
	laps      []stopwatch.Lap

	timerListeners     []TimerListener
	stopwatchListeners []StopwatchListener
	notifier           Notifier
}

// New creates a registry backed by store. Call Load before using it.
func New(store persistence.Store, c clock.Clock, opts Options) *Registry {
	if opts.MissedThreshold == 0 {
		opts.MissedThreshold = DefaultMissedThreshold
	}
	if opts.MissedThreshold > 0 {
		opts.MissedThreshold = -opts.MissedThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		store:     store,
		clock:     c,
		opts:      opts,
		stopwatch: stopwatch.Zero,
	}
}

// Load reads all timers, the stopwatch and its laps from the store and
// starts the ringer for timers that are still expired. The scheduler is not
// armed: stored monotonic times belong to the previous process until
// AfterReboot corrects them, and AfterReboot arms it.
func (r *Registry) Load() {
	r.timers = persistence.LoadTimers(r.store)
	r.stopwatch = persistence.LoadStopwatch(r.store)
	r.laps = persistence.LoadLaps(r.store)
	r.loaded = true
	r.invalidateViews()

	for _, t := range r.timers {
		if t.IsExpired() && r.opts.Ringer != nil {
			r.opts.Ringer.Start(t.ID())
		}
	}
	r.opts.Logger.Info("registry: loaded",
		"timers", len(r.timers),
		"stopwatch", r.stopwatch.State(),
		"laps", len(r.laps))
}

// SetScheduler replaces the expiration scheduler. The service uses it to
// break the construction cycle between registry and scheduler.
func (r *Registry) SetScheduler(s Scheduler) {
	r.opts.Scheduler = s
}

// SetRinger replaces the ringer.
func (r *Registry) SetRinger(rg Ringer) {
	r.opts.Ringer = rg
}

// SetSort changes the order of the expired and missed views.
func (r *Registry) SetSort(s timer.Sort) {
	if r.opts.Sort == s {
		return
	}
	r.opts.Sort = s
	r.invalidateViews()
	r.notify()
}

// Sort returns the configured view order.
func (r *Registry) Sort() timer.Sort {
	return r.opts.Sort
}

// MissedThreshold returns the configured missed threshold.
func (r *Registry) MissedThreshold() time.Duration {
	return r.opts.MissedThreshold
}

// Rearm hands the current timers to the scheduler. It is also the resync
// hook for alarm and guard deliveries.
func (r *Registry) Rearm() {
	if r.opts.Scheduler == nil || !r.loaded {
		return
	}
	r.opts.Scheduler.Update(slices.Clone(r.timers))
}

// Add creates a RESET timer, persists it and puts it first in the list.
func (r *Registry) Add(length time.Duration, label string, buttonTime time.Duration, deleteAfterUse bool) (timer.Timer, error) {
	if !r.loaded {
		return timer.Timer{}, ErrNotLoaded
	}
	if err := timer.ValidateLength(length); err != nil {
		return timer.Timer{}, fmt.Errorf("registry: add %v: %w", length, err)
	}

	t, err := persistence.AddTimer(r.store, timer.New(0, length, label, buttonTime, deleteAfterUse))
	if err != nil {
		return timer.Timer{}, fmt.Errorf("registry: %w", err)
	}
	r.timers = slices.Insert(r.timers, 0, t)

	r.opts.Logger.Debug("registry: timer added", "timer", t.ID(), "length", length)
	for _, l := range r.timerListeners {
		l.TimerAdded(t)
	}
	r.notify()
	return t, nil
}

// Update replaces the cached timer with the same id by t. Identical values
// are ignored.
func (r *Registry) Update(t timer.Timer) error {
	changed, err := r.update(t)
	if err != nil || !changed {
		return err
	}
	r.notify()
	// Last: the scheduler may expire a due timer synchronously, re-entering
	// Update.
	r.Rearm()
	return nil
}

// update persists t and applies it to the cache, ringer and listeners. The
// caller notifies and re-arms.
func (r *Registry) update(after timer.Timer) (bool, error) {
	i := r.index(after.ID())
	if i < 0 {
		return false, fmt.Errorf("registry: update timer %d: %w", after.ID(), ErrUnknownTimer)
	}
	before := r.timers[i]
	if before.Equal(after) {
		return false, nil
	}

	if err := persistence.UpdateTimer(r.store, after); err != nil {
		return false, fmt.Errorf("registry: %w", err)
	}
	r.timers[i] = after
	r.invalidateFor(before, after)

	if r.opts.Ringer != nil {
		switch {
		case after.IsExpired() && !before.IsExpired():
			r.opts.Ringer.Start(after.ID())
		case before.IsExpired() && !after.IsExpired():
			r.opts.Ringer.Stop(after.ID())
		}
	}

	if before.State() != after.State() {
		r.opts.Logger.Debug("registry: timer transition",
			"timer", after.ID(), "from", before.State(), "to", after.State())
	}
	for _, l := range r.timerListeners {
		l.TimerUpdated(before, after)
	}
	return true, nil
}

// Remove deletes t from the store and the cache.
func (r *Registry) Remove(t timer.Timer) error {
	i := r.index(t.ID())
	if i < 0 {
		return fmt.Errorf("registry: remove timer %d: %w", t.ID(), ErrUnknownTimer)
	}
	cached := r.timers[i]

	if err := persistence.RemoveTimer(r.store, cached); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	r.timers = slices.Delete(r.timers, i, i+1)
	r.invalidateFor(cached, cached)

	if cached.IsExpired() && r.opts.Ringer != nil {
		r.opts.Ringer.Stop(cached.ID())
	}
	r.opts.Logger.Debug("registry: timer removed", "timer", cached.ID())
	for _, l := range r.timerListeners {
		l.TimerRemoved(cached)
	}
	r.notify()
	r.Rearm()
	return nil
}

// ResetOrDelete removes t if it is expired or missed, marked delete after
// use and allowDelete is set. Otherwise it resets t.
func (r *Registry) ResetOrDelete(t timer.Timer, allowDelete bool) error {
	if allowDelete && t.IsExpiredOrMissed() && t.DeleteAfterUse() {
		return r.Remove(t)
	}
	return r.Update(t.Reset())
}

// ExpireTimer expires the timer with the given id if it is running. It is
// the expiration handler of the scheduler.
func (r *Registry) ExpireTimer(id int) error {
	t, ok := r.Timer(id)
	if !ok {
		return fmt.Errorf("registry: expire timer %d: %w", id, ErrUnknownTimer)
	}
	if !t.IsRunning() {
		return nil
	}
	return r.Update(t.Expire(r.clock))
}

// ResetExpiredTimers resets, or deletes when allowed, every expired timer.
func (r *Registry) ResetExpiredTimers(allowDelete bool) error {
	return r.resetEach(timer.Timer.IsExpired, allowDelete)
}

// ResetMissedTimers resets, or deletes when allowed, every missed timer.
func (r *Registry) ResetMissedTimers(allowDelete bool) error {
	return r.resetEach(timer.Timer.IsMissed, allowDelete)
}

// ResetUnexpiredTimers resets every running or paused timer.
func (r *Registry) ResetUnexpiredTimers() error {
	return r.resetEach(func(t timer.Timer) bool {
		return t.IsRunning() || t.IsPaused()
	}, false)
}

func (r *Registry) resetEach(match func(timer.Timer) bool, allowDelete bool) error {
	for _, t := range slices.Clone(r.timers) {
		if !match(t) {
			continue
		}
		if err := r.ResetOrDelete(t, allowDelete); err != nil {
			return err
		}
	}
	return nil
}

// SilenceExpiredTimers moves every expired timer to MISSED. It is called
// when the ringer silences itself.
func (r *Registry) SilenceExpiredTimers() error {
	return r.batch(func(t timer.Timer) timer.Timer {
		if !t.IsExpired() {
			return t
		}
		return t.Miss(r.clock)
	})
}

// batch applies fn to every timer, then notifies and re-arms once.
func (r *Registry) batch(fn func(timer.Timer) timer.Timer) error {
	var err error
	for _, t := range slices.Clone(r.timers) {
		if _, err = r.update(fn(t)); err != nil {
			break
		}
	}
	r.notify()
	r.Rearm()
	return err
}

func (r *Registry) index(id int) int {
	return slices.IndexFunc(r.timers, func(t timer.Timer) bool { return t.ID() == id })
}

func (r *Registry) invalidateFor(before, after timer.Timer) {
	if before.IsExpired() || after.IsExpired() {
		r.expired.invalidate()
	}
	if before.IsMissed() || after.IsMissed() {
		r.missed.invalidate()
	}
}

func (r *Registry) invalidateViews() {
	r.expired.invalidate()
	r.missed.invalidate()
}
