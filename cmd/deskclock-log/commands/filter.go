package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/deskclock/deskclock-go/pkg/log"
)

// FilterOptions specifies filtering criteria shared by all commands.
// Empty fields match everything.
type FilterOptions struct {
	Session   string
	Source    string
	Kind      string
	TimerID   string
	TimeStart string
	TimeEnd   string
}

// BuildFilter converts command-line options into a journal filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{SessionID: opts.Session}

	if opts.Source != "" {
		s, err := parseSource(opts.Source)
		if err != nil {
			return filter, err
		}
		filter.Source = &s
	}

	if opts.Kind != "" {
		k, err := parseKind(opts.Kind)
		if err != nil {
			return filter, err
		}
		filter.Kind = &k
	}

	if opts.TimerID != "" {
		id, err := strconv.Atoi(opts.TimerID)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("invalid timer id: %s", opts.TimerID)
		}
		filter.TimerID = &id
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// parseSource parses a source string (case-insensitive).
func parseSource(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "timer":
		return log.SourceTimer, nil
	case "stopwatch":
		return log.SourceStopwatch, nil
	case "system":
		return log.SourceSystem, nil
	default:
		return 0, fmt.Errorf("invalid source: %s (must be timer, stopwatch, or system)", s)
	}
}

// parseKind parses a kind string (case-insensitive, "-" or "_").
func parseKind(s string) (log.Kind, error) {
	name := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	k, ok := log.ParseKind(name)
	if !ok {
		return 0, fmt.Errorf("invalid kind: %s (must be added, updated, removed, lap, reboot, time-set, or error)", s)
	}
	return k, nil
}

// RunFilter copies the events of path matching filter into a new journal
// file and reports how many were written to w.
func RunFilter(path string, filter log.Filter, output string, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Create file logger to write filtered events
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	err = reader.Each(func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}
	if err := logger.Err(); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
