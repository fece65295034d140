// Package log records a journal of timer and stopwatch events.
//
// The journal is separate from operational logging (slog): it is a complete,
// machine-readable trace of every state transition the registry applied,
// useful for answering "why did this timer not ring" after the fact.
//
// # Basic Usage
//
// Applications configure the journal by providing a Logger implementation:
//
//	// For development: log to console via slog
//	journal := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	journal, _ := log.NewFileLogger("/var/lib/deskclock/journal.tlog")
//
//	// Both: use MultiLogger
//	journal := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// A Listener turns registry callbacks into journal events:
//
//	reg.AddTimerListener(log.NewListener(journal, clk))
//
// # File Format
//
// Journal files are a stream of CBOR-encoded events with integer keys, using
// the .tlog extension. The deskclock-log CLI views, summarises and exports
// them.
package log
