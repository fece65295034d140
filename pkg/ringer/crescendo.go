package ringer

import (
	"math"
	"time"
)

// Crescendo defaults.
const (
	// DefaultCrescendoInterval is the time between two volume steps.
	DefaultCrescendoInterval = 50 * time.Millisecond

	// DefaultCrescendoRetries is how many ticks the crescendo waits for the
	// output to start playing before giving up.
	DefaultCrescendoRetries = 10

	// MinVolume is the starting volume of a crescendo (-40 dB).
	MinVolume = 0.01

	// MaxVolume is full volume (0 dB).
	MaxVolume = 1.0

	crescendoRangeDB = 40.0
)

// ComputeVolume returns the crescendo volume at now for a ramp of the given
// duration ending at stop. The gain rises linearly from -40 dB to 0 dB and
// is converted to a linear scalar.
func ComputeVolume(now, stop, duration time.Duration) float64 {
	if duration <= 0 {
		return MaxVolume
	}
	fraction := 1 - float64(stop-now)/float64(duration)
	gain := fraction*crescendoRangeDB - crescendoRangeDB
	volume := math.Pow(10, gain/20)
	return min(MaxVolume, max(MinVolume, volume))
}

// crescendo is one volume ramp. It follows the ringer's current handle, so a
// switch to the fallback tone keeps ramping, and stops as soon as the ringer
// moves to another generation.
type crescendo struct {
	r          *Ringer
	generation uint64
	stop       time.Duration
	duration   time.Duration
	misses     int
}

// tick adjusts the volume once and re-posts itself until the ramp is done.
func (c *crescendo) tick() {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != c.generation || !r.sounding {
		return
	}

	if !r.cfg.Output.IsPlaying(r.handle) {
		c.misses++
		if c.misses > r.cfg.CrescendoRetries {
			r.cfg.Logger.Warn("ringer: output never started, abandoning crescendo", "retries", c.misses-1)
			r.cancelCrescendo = nil
			return
		}
		r.cancelCrescendo = r.cfg.Background.PostDelayed(r.cfg.CrescendoInterval, c.tick)
		return
	}

	now := r.cfg.Clock.Elapsed()
	if now > c.stop {
		r.setVolumeLocked(r.handle, MaxVolume)
		r.cancelCrescendo = nil
		return
	}
	r.setVolumeLocked(r.handle, ComputeVolume(now, c.stop, c.duration))
	r.cancelCrescendo = r.cfg.Background.PostDelayed(r.cfg.CrescendoInterval, c.tick)
}
