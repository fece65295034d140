package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/deskclock/deskclock-go/pkg/log"
)

// Stats holds aggregate statistics about a journal file.
type Stats struct {
	TotalEvents    int
	EventsBySource map[log.Source]int
	EventsByKind   map[log.Kind]int
	Sessions       map[string]*SessionStats
	Timers         map[int]*TimerStats
	Laps           int
	Errors         int
	Truncated      bool
	TimeRange      struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single process run.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
}

// TimerStats holds statistics for a single timer.
type TimerStats struct {
	Label   string
	Events  int
	Started int
	Expired int
	Missed  int
	Removed bool
}

// CollectStats aggregates the events of path.
func CollectStats(path string, filter log.Filter) (*Stats, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsBySource: make(map[log.Source]int),
		EventsByKind:   make(map[log.Kind]int),
		Sessions:       make(map[string]*SessionStats),
		Timers:         make(map[int]*TimerStats),
	}

	err = reader.Each(func(event log.Event) error {
		stats.add(event)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}
	stats.Truncated = reader.Truncated()
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsBySource[event.Source]++
	s.EventsByKind[event.Kind]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}

	switch event.Kind {
	case log.KindLap:
		s.Laps++
	case log.KindError:
		s.Errors++
	}

	if event.Source != log.SourceTimer || event.TimerID == 0 {
		return
	}
	ts, ok := s.Timers[event.TimerID]
	if !ok {
		ts = &TimerStats{}
		s.Timers[event.TimerID] = ts
	}
	ts.Events++
	if event.Label != "" {
		ts.Label = event.Label
	}
	if event.Kind == log.KindRemoved {
		ts.Removed = true
	}
	if tr := event.Transition; tr != nil && tr.OldState != tr.NewState {
		switch tr.NewState {
		case "RUNNING":
			if tr.OldState != "PAUSED" {
				ts.Started++
			}
		case "EXPIRED":
			ts.Expired++
		case "MISSED":
			ts.Missed++
		}
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	stats, err := CollectStats(path, filter)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Deskclock Journal Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.Truncated {
		fmt.Fprintln(w, "Journal ends in a partial record.")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Source:")
	for _, src := range []log.Source{log.SourceTimer, log.SourceStopwatch, log.SourceSystem} {
		if count := stats.EventsBySource[src]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", src.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for k := log.KindAdded; k <= log.KindError; k++ {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Timers: %d\n", len(stats.Timers))
	ids := make([]int, 0, len(stats.Timers))
	for id := range stats.Timers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		ts := stats.Timers[id]
		fmt.Fprintf(w, "  #%-4d %d events, started %d, expired %d, missed %d", id, ts.Events, ts.Started, ts.Expired, ts.Missed)
		if ts.Label != "" {
			fmt.Fprintf(w, " %q", ts.Label)
		}
		if ts.Removed {
			fmt.Fprint(w, " (removed)")
		}
		fmt.Fprintln(w)
	}

	if stats.Laps > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Laps: %d\n", stats.Laps)
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
