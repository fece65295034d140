// Package config loads the deskclock daemon configuration.
//
// Settings come from, in increasing order of precedence: built-in defaults,
// an optional YAML file and DESKCLOCK_* environment variables, where nested
// keys are joined with underscores (DESKCLOCK_RINGER_CRESCENDO=30s).
package config

import (
	"time"

	"github.com/deskclock/deskclock-go/pkg/expiry"
	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/service"
)

// Config holds all daemon configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Timers  TimersConfig  `mapstructure:"timers"`
	Ringer  RingerConfig  `mapstructure:"ringer"`
	Journal JournalConfig `mapstructure:"journal"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// StorageConfig selects the persistent store.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory file sqlite"`
	Path   string `mapstructure:"path" validate:"required_unless=Driver memory"`
}

// TimersConfig tunes timer expiry handling.
type TimersConfig struct {
	MissedThreshold      time.Duration `mapstructure:"missed_threshold" validate:"gt=0"`
	GuardWindow          time.Duration `mapstructure:"guard_window" validate:"gt=0"`
	Sort                 string        `mapstructure:"sort" validate:"timersort"`
	TimeSetCheckInterval time.Duration `mapstructure:"time_set_check_interval"`
	TimeSetTolerance     time.Duration `mapstructure:"time_set_tolerance" validate:"gt=0"`
}

// RingerConfig configures the alarm sound.
type RingerConfig struct {
	// Ringtone is a file path or file:// URI. Empty plays the terminal bell.
	Ringtone          string        `mapstructure:"ringtone"`
	Crescendo         time.Duration `mapstructure:"crescendo" validate:"gte=0"`
	CrescendoInterval time.Duration `mapstructure:"crescendo_interval" validate:"gt=0"`
	CrescendoRetries  int           `mapstructure:"crescendo_retries" validate:"gt=0"`
	AutoSilence       string        `mapstructure:"auto_silence" validate:"autosilence"`

	// Player is the command that plays Ringtone, with {uri} and {volume}
	// placeholders.
	Player       []string      `mapstructure:"player"`
	BellInterval time.Duration `mapstructure:"bell_interval" validate:"gt=0"`
}

// JournalConfig configures the timer event journal.
type JournalConfig struct {
	// Path of the CBOR journal file. Empty disables the file journal.
	Path string `mapstructure:"path"`

	// Console also writes journal events to the operational log.
	Console bool `mapstructure:"console"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "deskclock.state",
		},
		Timers: TimersConfig{
			MissedThreshold:      -registry.DefaultMissedThreshold,
			GuardWindow:          expiry.DefaultGuardWindow,
			Sort:                 "duration-asc",
			TimeSetCheckInterval: service.DefaultTimeSetCheckInterval,
			TimeSetTolerance:     service.DefaultTimeSetTolerance,
		},
		Ringer: RingerConfig{
			CrescendoInterval: ringer.DefaultCrescendoInterval,
			CrescendoRetries:  ringer.DefaultCrescendoRetries,
			AutoSilence:       "10m",
			Player:            []string{"paplay", "--volume={volume}", "{uri}"},
			BellInterval:      time.Second,
		},
	}
}

// settings flattens c into dotted viper keys. Durations are rendered as
// strings so that written files stay readable.
func (c Config) settings() map[string]any {
	return map[string]any{
		"log.level":                      c.Log.Level,
		"log.format":                     c.Log.Format,
		"storage.driver":                 c.Storage.Driver,
		"storage.path":                   c.Storage.Path,
		"timers.missed_threshold":        c.Timers.MissedThreshold.String(),
		"timers.guard_window":            c.Timers.GuardWindow.String(),
		"timers.sort":                    c.Timers.Sort,
		"timers.time_set_check_interval": c.Timers.TimeSetCheckInterval.String(),
		"timers.time_set_tolerance":      c.Timers.TimeSetTolerance.String(),
		"ringer.ringtone":                c.Ringer.Ringtone,
		"ringer.crescendo":               c.Ringer.Crescendo.String(),
		"ringer.crescendo_interval":      c.Ringer.CrescendoInterval.String(),
		"ringer.crescendo_retries":       c.Ringer.CrescendoRetries,
		"ringer.auto_silence":            c.Ringer.AutoSilence,
		"ringer.player":                  c.Ringer.Player,
		"ringer.bell_interval":           c.Ringer.BellInterval.String(),
		"journal.path":                   c.Journal.Path,
		"journal.console":                c.Journal.Console,
	}
}
