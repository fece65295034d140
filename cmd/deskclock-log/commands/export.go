package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/deskclock/deskclock-go/pkg/log"
)

// record is the flat export form of a journal event.
type record struct {
	Timestamp string `json:"timestamp"`
	Session   string `json:"session"`
	Source    string `json:"source"`
	Kind      string `json:"kind"`
	TimerID   int    `json:"timer_id,omitempty"`
	Label     string `json:"label,omitempty"`
	OldState  string `json:"old_state,omitempty"`
	NewState  string `json:"new_state,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Length    string `json:"length,omitempty"`
	Lap       int    `json:"lap,omitempty"`
	LapTime   string `json:"lap_time,omitempty"`
	Total     string `json:"total,omitempty"`
	Error     string `json:"error,omitempty"`
	Context   string `json:"context,omitempty"`
}

var csvHeader = []string{
	"timestamp", "session", "source", "kind", "timer_id", "label",
	"old_state", "new_state", "remaining", "length",
	"lap", "lap_time", "total", "error", "context",
}

func toRecord(e log.Event) record {
	r := record{
		Timestamp: e.Timestamp.UTC().Format(timestampLayout),
		Session:   e.SessionID,
		Source:    e.Source.String(),
		Kind:      e.Kind.String(),
		TimerID:   e.TimerID,
		Label:     e.Label,
	}
	if tr := e.Transition; tr != nil {
		r.OldState = tr.OldState
		r.NewState = tr.NewState
		r.Remaining = tr.Remaining.String()
		if tr.Length > 0 {
			r.Length = tr.Length.String()
		}
	}
	if lap := e.Lap; lap != nil {
		r.Lap = lap.Number
		r.LapTime = lap.LapTime.String()
		r.Total = lap.Total.String()
	}
	if e.Error != nil {
		r.Error = e.Error.Message
		r.Context = e.Error.Context
	}
	return r
}

func (r record) row() []string {
	intField := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	return []string{
		r.Timestamp, r.Session, r.Source, r.Kind, intField(r.TimerID), r.Label,
		r.OldState, r.NewState, r.Remaining, r.Length,
		intField(r.Lap), r.LapTime, r.Total, r.Error, r.Context,
	}
}

// RunExport exports the log file to the specified format.
func RunExport(path string, filter log.Filter, format, output string) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return reader.Each(func(event log.Event) error {
		if err := encoder.Encode(toRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := reader.Each(func(event log.Event) error {
		if err := cw.Write(toRecord(event).row()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
