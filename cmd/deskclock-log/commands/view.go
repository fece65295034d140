// Package commands implements the deskclock-log CLI commands.
package commands

import (
	"fmt"
	"io"

	"github.com/deskclock/deskclock-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [sess:id] SOURCE KIND #timer "label"
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [sess:%s] %s %s", ts, shortenSessionID(event.SessionID), event.Source, event.Kind)
	if event.Source == log.SourceTimer && event.TimerID != 0 {
		fmt.Fprintf(w, " #%d", event.TimerID)
	}
	if event.Label != "" {
		fmt.Fprintf(w, " %q", event.Label)
	}
	fmt.Fprintln(w)

	switch {
	case event.Transition != nil:
		formatTransitionDetails(w, event.Source, event.Transition)
	case event.Lap != nil:
		fmt.Fprintf(w, "  Lap %d: %s (total %s)\n", event.Lap.Number, event.Lap.LapTime, event.Lap.Total)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatTransitionDetails writes state change details.
func formatTransitionDetails(w io.Writer, src log.Source, tr *log.TransitionEvent) {
	switch {
	case tr.OldState == "":
		fmt.Fprintf(w, "  -> %s\n", tr.NewState)
	case tr.NewState == "":
		fmt.Fprintf(w, "  %s ->\n", tr.OldState)
	default:
		fmt.Fprintf(w, "  %s -> %s\n", tr.OldState, tr.NewState)
	}

	if src == log.SourceStopwatch {
		fmt.Fprintf(w, "  Total: %s\n", tr.Remaining)
		return
	}
	fmt.Fprintf(w, "  Remaining: %s", tr.Remaining)
	if tr.Length > 0 {
		fmt.Fprintf(w, "  Length: %s", tr.Length)
	}
	fmt.Fprintln(w)
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	err = reader.Each(func(event log.Event) error {
		formatEvent(output, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}
	if reader.Truncated() {
		fmt.Fprintf(output, "(journal ends in a partial record after %d events)\n", reader.Read())
	}
	return nil
}
