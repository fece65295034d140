package ringer

import "time"

// FallbackURI names the built-in tone every Output must be able to play.
const FallbackURI = "builtin:bell"

// Handle identifies one playback started by an Output.
type Handle uint64

// Output is the audio device the ringer plays through.
type Output interface {
	// Play starts uri at volume, looping it until stopped if looping is set.
	Play(uri string, looping bool, volume float64) (Handle, error)

	// SetVolume sets the linear volume of h, in [0, 1].
	SetVolume(h Handle, volume float64) error

	// Stop ends playback of h.
	Stop(h Handle) error

	// IsPlaying reports whether h has actually started sounding.
	IsPlaying(h Handle) bool

	// Duration returns the natural length of one pass of uri.
	Duration(uri string) (time.Duration, error)
}

// FailureReporter is implemented by outputs whose playback can die after
// Play returned. fn is called at most once per handle, never for a handle
// that was stopped, and never while the output holds its own locks.
type FailureReporter interface {
	OnFailure(fn func(h Handle, err error))
}
