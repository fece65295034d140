package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes journal events to an slog.Logger.
// Useful for development when you want to see timer transitions in the
// console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger
// at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter that logs at level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("source", event.Source.String()),
		slog.String("kind", event.Kind.String()),
	}

	if event.Source == SourceTimer {
		attrs = append(attrs, slog.Int("timer", event.TimerID))
	}
	if event.Label != "" {
		attrs = append(attrs, slog.String("label", event.Label))
	}

	switch {
	case event.Transition != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Transition.OldState),
			slog.String("new_state", event.Transition.NewState),
			slog.Duration("remaining", event.Transition.Remaining),
		)
		if event.Transition.Length != 0 {
			attrs = append(attrs, slog.Duration("length", event.Transition.Length))
		}
	case event.Lap != nil:
		attrs = append(attrs,
			slog.Int("lap", event.Lap.Number),
			slog.Duration("lap_time", event.Lap.LapTime),
			slog.Duration("total", event.Lap.Total),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	level := a.level
	if event.Kind == KindError {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "journal", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
