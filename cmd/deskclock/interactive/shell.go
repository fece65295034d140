// Package interactive provides the interactive command-line interface
// for the deskclock daemon.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/deskclock/deskclock-go/pkg/registry"
	"github.com/deskclock/deskclock-go/pkg/service"
	"github.com/deskclock/deskclock-go/pkg/stopwatch"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// Shell handles interactive mode for deskclock.
type Shell struct {
	svc *service.ClockService
	rl  *readline.Instance
	out io.Writer

	// Only touched by the notifier on the model loop.
	lastRinging []int
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("add"),
	readline.PcItem("start"),
	readline.PcItem("pause"),
	readline.PcItem("reset"),
	readline.PcItem("plus"),
	readline.PcItem("delete"),
	readline.PcItem("label"),
	readline.PcItem("list"),
	readline.PcItem("expired"),
	readline.PcItem("missed"),
	readline.PcItem("silence"),
	readline.PcItem("dismiss"),
	readline.PcItem("sw",
		readline.PcItem("start"),
		readline.PcItem("pause"),
		readline.PcItem("reset"),
		readline.PcItem("lap"),
		readline.PcItem("show"),
	),
	readline.PcItem("reboot"),
	readline.PcItem("timeset"),
	readline.PcItem("status"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// New creates a shell reading from the terminal.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "deskclock> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl, out: rl.Stdout()}, nil
}

func newShell(out io.Writer) *Shell {
	return &Shell{out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Attach binds the shell to svc. It must be called before svc starts.
func (s *Shell) Attach(svc *service.ClockService) {
	s.svc = svc
}

// Notifier announces newly ringing timers.
func (s *Shell) Notifier() registry.Notifier {
	return registry.NotifierFunc(func() {
		if s.svc == nil {
			return
		}
		ringing := s.svc.Ringing()
		if len(ringing) > 0 && !slices.Equal(ringing, s.lastRinging) {
			fmt.Fprintf(s.out, "\n*** Ringing: %s (type 'silence' or 'dismiss')\n", joinIDs(ringing))
		}
		s.lastRinging = ringing
	})
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.exec(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// exec runs one command line. It returns false when the shell should exit.
func (s *Shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "add", "a":
		err = s.cmdAdd(ctx, args)
	case "start":
		err = s.updateTimer(ctx, args, func(t timer.Timer) timer.Timer { return t.Start(s.svc.Clock()) })
	case "pause":
		err = s.updateTimer(ctx, args, func(t timer.Timer) timer.Timer { return t.Pause(s.svc.Clock()) })
	case "plus", "+":
		err = s.updateTimer(ctx, args, func(t timer.Timer) timer.Timer { return t.AddCustomTime(s.svc.Clock()) })
	case "reset":
		err = s.withTimer(ctx, args, func(reg *registry.Registry, t timer.Timer) error {
			return reg.ResetOrDelete(t, true)
		})
	case "delete", "rm":
		err = s.withTimer(ctx, args, func(reg *registry.Registry, t timer.Timer) error {
			return reg.Remove(t)
		})
	case "label":
		err = s.cmdLabel(ctx, args)
	case "list", "ls":
		err = s.cmdList(ctx, func(reg *registry.Registry) []timer.Timer { return reg.Timers() })
	case "expired":
		err = s.cmdList(ctx, func(reg *registry.Registry) []timer.Timer { return reg.ExpiredTimers() })
	case "missed":
		err = s.cmdList(ctx, func(reg *registry.Registry) []timer.Timer { return reg.MissedTimers() })
	case "silence":
		err = s.svc.Do(ctx, func(reg *registry.Registry) error { return reg.SilenceExpiredTimers() })
	case "dismiss":
		err = s.svc.Do(ctx, func(reg *registry.Registry) error {
			if err := reg.ResetExpiredTimers(true); err != nil {
				return err
			}
			return reg.ResetMissedTimers(true)
		})
	case "sw":
		err = s.cmdStopwatch(ctx, args)
	case "reboot":
		err = s.svc.Do(ctx, func(reg *registry.Registry) error { return reg.AfterReboot() })
	case "timeset":
		err = s.svc.Do(ctx, func(reg *registry.Registry) error { return reg.AfterTimeSet() })
	case "status":
		s.cmdStatus()
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Deskclock Commands:
  Timers:
    add <duration> [label]  - Create a timer (e.g. add 5m tea, add 90)
    start <id>              - Start or resume a timer
    pause <id>              - Pause a running timer
    plus <id>               - Add the button time to a timer
    reset <id>              - Reset a timer (deletes one-shot timers)
    delete <id>             - Delete a timer
    label <id> [text]       - Set or clear a timer label
    list                    - List all timers
    expired                 - List expired timers
    missed                  - List missed timers
    silence                 - Stop ringing, mark expired timers missed
    dismiss                 - Reset all expired and missed timers

  Stopwatch:
    sw start|pause|reset    - Control the stopwatch
    sw lap                  - Record a lap
    sw show                 - Show the stopwatch and its laps

  Clock:
    reboot                  - Run the reboot fixup
    timeset                 - Run the time set fixup
    status                  - Show engine status

  General:
    help                    - Show this help
    quit                    - Exit`)
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("timer id required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timer id %q", args[0])
	}
	return id, nil
}

// parseLength accepts a Go duration or a number of seconds.
func parseLength(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func (s *Shell) withTimer(ctx context.Context, args []string, fn func(*registry.Registry, timer.Timer) error) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return s.svc.Do(ctx, func(reg *registry.Registry) error {
		t, ok := reg.Timer(id)
		if !ok {
			return fmt.Errorf("%w: %d", registry.ErrUnknownTimer, id)
		}
		return fn(reg, t)
	})
}

func (s *Shell) updateTimer(ctx context.Context, args []string, fn func(timer.Timer) timer.Timer) error {
	return s.withTimer(ctx, args, func(reg *registry.Registry, t timer.Timer) error {
		return reg.Update(fn(t))
	})
}

func (s *Shell) cmdAdd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <duration> [label]")
	}
	length, err := parseLength(args[0])
	if err != nil {
		return err
	}
	label := strings.Join(args[1:], " ")

	var added timer.Timer
	err = s.svc.Do(ctx, func(reg *registry.Registry) error {
		var err error
		added, err = reg.Add(length, label, timer.DefaultButtonTime, false)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added timer %d (%s)\n", added.ID(), formatDuration(added.Length()))
	return nil
}

func (s *Shell) cmdLabel(ctx context.Context, args []string) error {
	label := ""
	if len(args) > 1 {
		label = strings.Join(args[1:], " ")
	}
	return s.updateTimer(ctx, args, func(t timer.Timer) timer.Timer { return t.SetLabel(label) })
}

func (s *Shell) cmdList(ctx context.Context, pick func(*registry.Registry) []timer.Timer) error {
	var rows []string
	err := s.svc.Do(ctx, func(reg *registry.Registry) error {
		for _, t := range pick(reg) {
			rows = append(rows, s.formatTimer(t))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No timers.")
		return nil
	}
	fmt.Fprintf(s.out, "%4s  %-8s  %9s  %9s  %s\n", "ID", "STATE", "REMAINING", "LENGTH", "LABEL")
	for _, r := range rows {
		fmt.Fprintln(s.out, r)
	}
	return nil
}

func (s *Shell) formatTimer(t timer.Timer) string {
	return fmt.Sprintf("%4d  %-8s  %9s  %9s  %s",
		t.ID(), t.State(), formatDuration(t.RemainingTime(s.svc.Clock())), formatDuration(t.TotalLength()), t.Label())
}

func (s *Shell) cmdStopwatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sw start|pause|reset|lap|show")
	}
	c := s.svc.Clock()

	switch strings.ToLower(args[0]) {
	case "start":
		return s.setStopwatch(ctx, func(sw stopwatch.Stopwatch) stopwatch.Stopwatch { return sw.Start(c) })
	case "pause":
		return s.setStopwatch(ctx, func(sw stopwatch.Stopwatch) stopwatch.Stopwatch { return sw.Pause(c) })
	case "reset":
		return s.setStopwatch(ctx, func(sw stopwatch.Stopwatch) stopwatch.Stopwatch { return sw.Reset() })
	case "lap":
		var lap stopwatch.Lap
		var ok bool
		err := s.svc.Do(ctx, func(reg *registry.Registry) error {
			var err error
			lap, ok, err = reg.AddLap()
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, "No lap recorded (stopwatch reset or lap limit reached).")
			return nil
		}
		fmt.Fprintf(s.out, "Lap %d: %s (total %s)\n", lap.Number, formatDuration(lap.LapTime), formatDuration(lap.AccumulatedTime))
		return nil
	case "show":
		return s.showStopwatch(ctx)
	default:
		return fmt.Errorf("unknown stopwatch command %q", args[0])
	}
}

func (s *Shell) setStopwatch(ctx context.Context, fn func(stopwatch.Stopwatch) stopwatch.Stopwatch) error {
	return s.svc.Do(ctx, func(reg *registry.Registry) error {
		_, err := reg.SetStopwatch(fn(reg.Stopwatch()))
		return err
	})
}

func (s *Shell) showStopwatch(ctx context.Context) error {
	var (
		sw      stopwatch.Stopwatch
		laps    []stopwatch.Lap
		current time.Duration
	)
	err := s.svc.Do(ctx, func(reg *registry.Registry) error {
		sw = reg.Stopwatch()
		laps = reg.Laps()
		current = reg.CurrentLapTime()
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Stopwatch: %s %s\n", sw.State(), formatDuration(sw.TotalTime(s.svc.Clock())))
	if len(laps) == 0 {
		return nil
	}
	fmt.Fprintf(s.out, "  Current lap: %s\n", formatDuration(current))
	for _, l := range laps {
		fmt.Fprintf(s.out, "  Lap %2d: %9s  %9s\n", l.Number, formatDuration(l.LapTime), formatDuration(l.AccumulatedTime))
	}
	return nil
}

func (s *Shell) cmdStatus() {
	fmt.Fprintf(s.out, "State:     %s\n", s.svc.State())
	fmt.Fprintf(s.out, "Session:   %s\n", s.svc.SessionID())
	fmt.Fprintf(s.out, "Degraded:  %v\n", s.svc.Degraded())
	fmt.Fprintf(s.out, "Ringing:   %s\n", joinIDs(s.svc.Ringing()))
	fmt.Fprintf(s.out, "Sounding:  %v\n", s.svc.Sounding())
	fmt.Fprintf(s.out, "Wake lock: %v\n", s.svc.WakeLockHeld())
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// formatDuration renders d as [-][h:]mm:ss.
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	sec := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, sec)
	}
	return fmt.Sprintf("%s%d:%02d", sign, m, sec)
}
