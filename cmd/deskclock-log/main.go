// Command deskclock-log is a tool for viewing and analyzing deskclock
// journal files.
//
// Journal files are written by deskclock when journal.path is configured.
//
// Usage:
//
//	deskclock-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View journal in human-readable format
//	export   Export journal to JSONL or CSV format
//	filter   Filter journal and write to new file
//	stats    Show statistics about the journal
//
// Examples:
//
//	# View all events
//	deskclock-log view deskclock.tlog
//
//	# View the history of timer 3
//	deskclock-log view -timer 3 deskclock.tlog
//
//	# Export reboots to CSV
//	deskclock-log export -format csv -kind reboot deskclock.tlog
//
//	# Keep only one session
//	deskclock-log filter -session 1b4e28ba -o session.tlog deskclock.tlog
//
//	# Show statistics
//	deskclock-log stats deskclock.tlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/deskclock/deskclock-go/cmd/deskclock-log/commands"
	"github.com/deskclock/deskclock-go/pkg/log"
)

const usage = `deskclock-log - Deskclock Journal Analyzer

Usage:
  deskclock-log <command> [flags] <file.tlog>

Commands:
  view     View journal in human-readable format
  export   Export journal to JSONL or CSV format
  filter   Filter journal and write to new file
  stats    Show statistics about the journal

Use "deskclock-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set with the shared filter flags.
func newFlagSet(name, summary string) (*flag.FlagSet, *commands.FilterOptions) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `deskclock-log %s - %s

Usage:
  deskclock-log %s [flags] <file.tlog>

Flags:
`, name, summary, name)
		fs.PrintDefaults()
	}

	var opts commands.FilterOptions
	fs.StringVar(&opts.Session, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Source, "source", "", "Filter by source (timer, stopwatch, system)")
	fs.StringVar(&opts.Kind, "kind", "", "Filter by kind (added, updated, removed, lap, reboot, time-set, error)")
	fs.StringVar(&opts.TimerID, "timer", "", "Filter by timer ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return fs, &opts
}

// parseArgs parses args and returns the journal path and filter.
func parseArgs(fs *flag.FlagSet, opts *commands.FilterOptions, args []string) (string, log.Filter) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: journal file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return fs.Arg(0), filter
}

func fail(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs, opts := newFlagSet("view", "View journal in human-readable format")
	path, filter := parseArgs(fs, opts, args)
	fail(commands.RunView(path, filter, os.Stdout))
}

func runExport(args []string) {
	fs, opts := newFlagSet("export", "Export journal to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path, filter := parseArgs(fs, opts, args)
	fail(commands.RunExport(path, filter, *format, *output))
}

func runFilter(args []string) {
	fs, opts := newFlagSet("filter", "Filter journal and write to new file")
	output := fs.String("o", "", "Output file (required)")
	path, filter := parseArgs(fs, opts, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}
	fail(commands.RunFilter(path, filter, *output, os.Stdout))
}

func runStats(args []string) {
	fs, opts := newFlagSet("stats", "Show statistics about the journal")
	path, filter := parseArgs(fs, opts, args)
	fail(commands.RunStats(path, filter, os.Stdout))
}
