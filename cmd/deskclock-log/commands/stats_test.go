package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/deskclock/deskclock-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := createTestJournal(t, sampleEvents())

	stats, err := CollectStats(path, log.Filter{})
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if stats.TotalEvents != 7 {
		t.Errorf("expected 7 events, got %d", stats.TotalEvents)
	}
	if stats.EventsBySource[log.SourceTimer] != 3 {
		t.Errorf("expected 3 timer events, got %d", stats.EventsBySource[log.SourceTimer])
	}
	if stats.EventsByKind[log.KindReboot] != 2 {
		t.Errorf("expected 2 reboots, got %d", stats.EventsByKind[log.KindReboot])
	}
	if len(stats.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(stats.Sessions))
	}
	if stats.Laps != 1 || stats.Errors != 1 {
		t.Errorf("expected 1 lap and 1 error, got %d and %d", stats.Laps, stats.Errors)
	}
	if d := stats.TimeRange.End.Sub(stats.TimeRange.Start); d != 6*time.Minute {
		t.Errorf("expected 6m range, got %s", d)
	}

	tea := stats.Timers[1]
	if tea == nil {
		t.Fatal("timer 1 missing")
	}
	if tea.Label != "tea" || tea.Events != 3 || tea.Started != 1 || tea.Expired != 1 || tea.Missed != 0 {
		t.Errorf("unexpected timer stats: %+v", *tea)
	}
}

func TestStatsResumeIsNotAStart(t *testing.T) {
	events := []log.Event{
		{Timestamp: testBase, Source: log.SourceTimer, Kind: log.KindUpdated, TimerID: 2,
			Transition: &log.TransitionEvent{OldState: "RESET", NewState: "RUNNING"}},
		{Timestamp: testBase, Source: log.SourceTimer, Kind: log.KindUpdated, TimerID: 2,
			Transition: &log.TransitionEvent{OldState: "RUNNING", NewState: "PAUSED"}},
		{Timestamp: testBase, Source: log.SourceTimer, Kind: log.KindUpdated, TimerID: 2,
			Transition: &log.TransitionEvent{OldState: "PAUSED", NewState: "RUNNING"}},
		{Timestamp: testBase, Source: log.SourceTimer, Kind: log.KindUpdated, TimerID: 2,
			Transition: &log.TransitionEvent{OldState: "RUNNING", NewState: "MISSED"}},
		{Timestamp: testBase, Source: log.SourceTimer, Kind: log.KindRemoved, TimerID: 2,
			Transition: &log.TransitionEvent{OldState: "MISSED"}},
	}
	stats, err := CollectStats(createTestJournal(t, events), log.Filter{})
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	ts := stats.Timers[2]
	if ts.Started != 1 || ts.Missed != 1 || !ts.Removed {
		t.Errorf("unexpected timer stats: %+v", *ts)
	}
}

func TestRunStats(t *testing.T) {
	path := createTestJournal(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Total Events: 7",
		"TIMER:",
		"REBOOT:",
		"Sessions: 2",
		"[session-] 4 events",
		"#1",
		"\"tea\"",
		"Laps: 1",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
