package config

import (
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/service"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// Service returns the engine settings of c. Store, Output, Clock and
// Journal are left for the caller. c must have passed Validate.
func (c *Config) Service() service.Config {
	sc := service.DefaultConfig()
	sc.MissedThreshold = c.Timers.MissedThreshold
	sc.GuardWindow = c.Timers.GuardWindow
	sc.TimeSetCheckInterval = c.Timers.TimeSetCheckInterval
	sc.TimeSetTolerance = c.Timers.TimeSetTolerance
	sc.Ringtone = c.Ringer.Ringtone
	sc.Crescendo = c.Ringer.Crescendo
	sc.CrescendoInterval = c.Ringer.CrescendoInterval
	sc.CrescendoRetries = c.Ringer.CrescendoRetries

	if s, err := timer.ParseSort(c.Timers.Sort); err == nil {
		sc.Sort = s
	}
	if a, err := ringer.ParseAutoSilence(c.Ringer.AutoSilence); err == nil {
		sc.AutoSilence = a
	}
	return sc
}
