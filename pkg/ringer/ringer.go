// Package ringer sounds the alarm for expired timers.
//
// The ringer tracks the set of timers that are currently ringing. Audio
// starts when the first timer joins the set and stops, exactly once, when
// the last one leaves. While sounding the ringer holds a wake lock, can ramp
// the volume up with a crescendo and can silence itself after a configured
// delay.
package ringer

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/wakelock"
	"github.com/deskclock/deskclock-go/pkg/worker"
)

// WakeLockTag identifies the ringer's wake lock hold.
const WakeLockTag = "ringer"

// Config configures a Ringer.
type Config struct {
	Output   Output
	Clock    clock.Clock
	WakeLock wakelock.WakeLock

	// Model runs the auto-silence callback. It should post onto the
	// goroutine that owns the timers, since OnSilenced updates them.
	Model worker.Executor

	// Background runs the crescendo.
	Background worker.Executor

	// Ringtone is the URI to play. Empty selects FallbackURI.
	Ringtone string

	// Crescendo is the volume ramp duration. Zero plays at full volume.
	Crescendo time.Duration

	// CrescendoInterval defaults to DefaultCrescendoInterval.
	CrescendoInterval time.Duration

	// CrescendoRetries defaults to DefaultCrescendoRetries.
	CrescendoRetries int

	AutoSilence AutoSilence

	// OnSilenced is called on Model when auto-silence fires. It is expected
	// to move the ringing timers out of the expired state, which stops the
	// ringer. When nil the ringer simply stops.
	OnSilenced func()

	Logger *slog.Logger
}

// Ringer plays the ringtone while at least one timer is ringing.
// It is safe for concurrent use.
type Ringer struct {
	cfg Config

	mu       sync.Mutex
	ringing  map[int]struct{}
	sounding bool
	handle   Handle
	uri      string
	volume   float64

	// generation changes on every start and stop so stale callbacks from
	// an earlier playback can recognise themselves.
	generation      uint64
	cancelSilence   worker.Cancel
	cancelCrescendo worker.Cancel
}

// New creates a silent ringer.
func New(cfg Config) *Ringer {
	if cfg.CrescendoInterval <= 0 {
		cfg.CrescendoInterval = DefaultCrescendoInterval
	}
	if cfg.CrescendoRetries <= 0 {
		cfg.CrescendoRetries = DefaultCrescendoRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Ringer{cfg: cfg, ringing: make(map[int]struct{})}
	if fr, ok := cfg.Output.(FailureReporter); ok {
		fr.OnFailure(r.playbackFailed)
	}
	return r
}

// Start adds a timer to the ringing set, starting audio if it was empty.
func (r *Ringer) Start(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ringing[id]; ok {
		return
	}
	r.ringing[id] = struct{}{}
	if len(r.ringing) == 1 {
		r.startLocked()
	}
}

// Stop removes a timer from the ringing set, stopping audio once it is empty.
func (r *Ringer) Stop(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ringing[id]; !ok {
		return
	}
	delete(r.ringing, id)
	if len(r.ringing) == 0 {
		r.stopLocked()
	}
}

// StopAll empties the ringing set and stops audio.
func (r *Ringer) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ringing) == 0 {
		return
	}
	clear(r.ringing)
	r.stopLocked()
}

// Ringing returns the ids in the ringing set, in ascending order.
func (r *Ringer) Ringing() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.ringing))
	for id := range r.ringing {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Sounding reports whether audio is playing.
func (r *Ringer) Sounding() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sounding
}

// SetRingtone changes the ringtone used from the next start.
func (r *Ringer) SetRingtone(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Ringtone = uri
}

// SetCrescendo changes the crescendo duration used from the next start.
func (r *Ringer) SetCrescendo(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Crescendo = d
}

// SetAutoSilence changes the auto-silence setting used from the next start.
func (r *Ringer) SetAutoSilence(a AutoSilence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.AutoSilence = a
}

func (r *Ringer) startLocked() {
	r.generation++
	r.cfg.WakeLock.Acquire(WakeLockTag)

	// A crescendo starts quiet from the first sample.
	volume := MaxVolume
	if r.cfg.Crescendo > 0 {
		volume = MinVolume
	}

	uri, h, ok := r.playLocked(volume)
	if !ok {
		r.cfg.WakeLock.Release(WakeLockTag)
		return
	}
	r.sounding = true
	r.handle = h
	r.uri = uri
	r.volume = volume

	if r.cfg.Crescendo > 0 {
		c := &crescendo{
			r:          r,
			generation: r.generation,
			stop:       r.cfg.Clock.Elapsed() + r.cfg.Crescendo,
			duration:   r.cfg.Crescendo,
		}
		r.cancelCrescendo = r.cfg.Background.PostDelayed(r.cfg.CrescendoInterval, c.tick)
	}

	r.scheduleSilenceLocked(uri)
}

// playLocked starts the ringtone, falling back to the built-in tone once.
func (r *Ringer) playLocked(volume float64) (string, Handle, bool) {
	uri := r.cfg.Ringtone
	if uri == "" {
		uri = FallbackURI
	}

	h, err := r.cfg.Output.Play(uri, true, volume)
	if err == nil {
		return uri, h, true
	}
	if uri == FallbackURI {
		r.cfg.Logger.Error("ringer: fallback tone failed", "error", err)
		return "", 0, false
	}

	r.cfg.Logger.Warn("ringer: ringtone failed, using fallback", "uri", uri, "error", err)
	h, err = r.cfg.Output.Play(FallbackURI, true, volume)
	if err != nil {
		r.cfg.Logger.Error("ringer: fallback tone failed", "error", err)
		return "", 0, false
	}
	return FallbackURI, h, true
}

// playbackFailed handles a playback that died after Play succeeded. The
// ringtone is replaced by the fallback tone at the current volume; a dead
// fallback tone leaves the ringer silent.
func (r *Ringer) playbackFailed(h Handle, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sounding || h != r.handle {
		return
	}
	if r.uri != FallbackURI {
		r.cfg.Logger.Warn("ringer: ringtone stopped, using fallback", "uri", r.uri, "error", err)
		fh, ferr := r.cfg.Output.Play(FallbackURI, true, r.volume)
		if ferr == nil {
			r.handle = fh
			r.uri = FallbackURI
			return
		}
		err = ferr
	}

	r.cfg.Logger.Error("ringer: fallback tone failed", "error", err)
	if r.cancelCrescendo != nil {
		r.cancelCrescendo()
		r.cancelCrescendo = nil
	}
	r.sounding = false
	r.handle = 0
	r.uri = ""
	r.cfg.WakeLock.Release(WakeLockTag)
}

func (r *Ringer) scheduleSilenceLocked(uri string) {
	var after time.Duration
	switch a := r.cfg.AutoSilence; {
	case a < 0:
		return
	case a == 0:
		d, err := r.cfg.Output.Duration(uri)
		if err != nil || d <= 0 {
			r.cfg.Logger.Warn("ringer: ringtone length unknown, not auto-silencing", "uri", uri, "error", err)
			return
		}
		after = d
	default:
		after = time.Duration(a)
	}

	generation := r.generation
	r.cancelSilence = r.cfg.Model.PostDelayed(after, func() { r.silence(generation) })
}

func (r *Ringer) silence(generation uint64) {
	r.mu.Lock()
	current := r.generation == generation && r.sounding
	if current {
		r.cancelSilence = nil
	}
	onSilenced := r.cfg.OnSilenced
	r.mu.Unlock()

	if !current {
		return
	}
	r.cfg.Logger.Info("ringer: auto-silenced")
	if onSilenced != nil {
		onSilenced()
		return
	}
	r.StopAll()
}

func (r *Ringer) stopLocked() {
	r.generation++
	if r.cancelSilence != nil {
		r.cancelSilence()
		r.cancelSilence = nil
	}
	if r.cancelCrescendo != nil {
		r.cancelCrescendo()
		r.cancelCrescendo = nil
	}
	if !r.sounding {
		return
	}
	if err := r.cfg.Output.Stop(r.handle); err != nil {
		r.cfg.Logger.Warn("ringer: stop failed", "error", err)
	}
	r.sounding = false
	r.handle = 0
	r.uri = ""
	r.cfg.WakeLock.Release(WakeLockTag)
}

func (r *Ringer) setVolumeLocked(h Handle, v float64) {
	r.volume = v
	if err := r.cfg.Output.SetVolume(h, v); err != nil {
		r.cfg.Logger.Debug("ringer: set volume failed", "volume", v, "error", err)
	}
}
