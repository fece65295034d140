package ringer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AutoSilence decides when a sounding ringer silences itself.
// Positive values are a fixed delay.
type AutoSilence time.Duration

const (
	// AutoSilenceNever keeps ringing until every timer is dismissed.
	AutoSilenceNever AutoSilence = -1

	// AutoSilenceEndOfRingtone stops after one pass of the ringtone.
	AutoSilenceEndOfRingtone AutoSilence = 0
)

// String returns the configuration form of a.
func (a AutoSilence) String() string {
	switch {
	case a < 0:
		return "never"
	case a == 0:
		return "end-of-ringtone"
	default:
		return time.Duration(a).String()
	}
}

// ParseAutoSilence parses "never", "end-of-ringtone", a Go duration such as
// "90s", or a bare number of seconds.
func ParseAutoSilence(s string) (AutoSilence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "never", "":
		return AutoSilenceNever, nil
	case "end-of-ringtone":
		return AutoSilenceEndOfRingtone, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("auto-silence must be positive: %q", s)
		}
		return AutoSilence(time.Duration(n) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid auto-silence %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("auto-silence must be positive: %q", s)
	}
	return AutoSilence(d), nil
}
