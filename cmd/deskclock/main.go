// Command deskclock runs the countdown timer and stopwatch engine.
//
// This command provides:
//   - Persistent countdown timers and a stopwatch with laps
//   - Exact expiry scheduling with a guard window
//   - Ringing through the terminal bell or an external player
//   - Reboot and wall clock change recovery
//   - A CBOR event journal readable with deskclock-log
//
// Usage:
//
//	deskclock [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-log-level string     Log level override: debug, info, warn, error
//	-interactive          Start the interactive shell
//	-write-config string  Write the effective configuration to a file and exit
//
// Examples:
//
//	# Run with the built-in defaults and an interactive shell
//	deskclock -interactive
//
//	# Run as a daemon with a config file
//	deskclock -config /etc/deskclock/deskclock.yaml
//
//	# Generate a config file to edit
//	deskclock -write-config deskclock.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskclock/deskclock-go/cmd/deskclock/interactive"
	"github.com/deskclock/deskclock-go/internal/config"
	"github.com/deskclock/deskclock-go/internal/logging"
	"github.com/deskclock/deskclock-go/pkg/audio"
	"github.com/deskclock/deskclock-go/pkg/clock"
	"github.com/deskclock/deskclock-go/pkg/log"
	"github.com/deskclock/deskclock-go/pkg/persistence"
	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/service"
)

var (
	configFile      string
	logLevel        string
	interactiveMode bool
	writeConfig     string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	flag.BoolVar(&interactiveMode, "interactive", false, "Start the interactive shell")
	flag.StringVar(&writeConfig, "write-config", "", "Write the effective configuration to a file and exit")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if writeConfig != "" {
		if err := config.Write(writeConfig, *cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", writeConfig)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config) error {
	var (
		shell  *interactive.Shell
		logOut io.Writer = os.Stderr
		bellTo io.Writer = os.Stdout
	)
	if interactiveMode {
		var err error
		shell, err = interactive.New()
		if err != nil {
			return err
		}
		logOut = shell.Stderr()
		bellTo = shell.Stdout()
	}

	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}

	journal, journalFile, err := openJournal(cfg.Journal, logger)
	if err != nil {
		_ = store.Close()
		return err
	}

	sysClock := clock.System()
	svcConfig := cfg.Service()
	svcConfig.Store = store
	svcConfig.Clock = sysClock
	svcConfig.Journal = journal
	svcConfig.Logger = logger
	svcConfig.Output = newOutput(cfg.Ringer, sysClock, bellTo, logger)
	if shell != nil {
		svcConfig.Notifier = shell.Notifier()
	}

	svc, err := service.NewClockService(svcConfig)
	if err != nil {
		_ = store.Close()
		_ = journal.Close()
		return err
	}
	if shell != nil {
		shell.Attach(svc)
	}

	// Start owns the store and journal from here on, closing them on failure.
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	logger.Info("deskclock started",
		"session", svc.SessionID(),
		"store", cfg.Storage.Driver,
		"journal", cfg.Journal.Path)

	if shell != nil {
		go shell.Run(ctx, cancel)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopErr := svc.Stop()
	if journalFile != nil && journalFile.Dropped() > 0 {
		logger.Warn("journal lost events",
			"dropped", journalFile.Dropped(),
			"error", journalFile.Err())
	}
	if stopErr != nil && !errors.Is(stopErr, service.ErrNotStarted) {
		return fmt.Errorf("stop: %w", stopErr)
	}
	return nil
}

func openStore(cfg config.StorageConfig) (persistence.Store, error) {
	switch cfg.Driver {
	case "memory":
		return persistence.NewMemoryStore(), nil
	case "file":
		return persistence.OpenFileStore(cfg.Path)
	case "sqlite":
		return persistence.OpenSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openJournal combines the file journal and the console journal as
// configured. The combined journal is never nil; the file journal is nil
// when no path is set.
func openJournal(cfg config.JournalConfig, logger *slog.Logger) (*log.MultiLogger, *log.FileLogger, error) {
	var (
		loggers []log.Logger
		file    *log.FileLogger
	)
	if cfg.Path != "" {
		var err error
		file, err = log.NewFileLogger(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("journal: %w", err)
		}
		loggers = append(loggers, file)
	}
	if cfg.Console {
		loggers = append(loggers, log.NewSlogAdapter(logger).WithLevel(slog.LevelInfo))
	}
	return log.NewMultiLogger(loggers...), file, nil
}

// newOutput plays the fallback tone on the bell and ringtones through the
// configured player, if any.
func newOutput(cfg config.RingerConfig, c clock.Clock, bellTo io.Writer, logger *slog.Logger) ringer.Output {
	bell := audio.NewBell(bellTo, c, cfg.BellInterval)
	var player ringer.Output
	if len(cfg.Player) > 0 {
		player = audio.NewCommand(audio.CommandConfig{Args: cfg.Player, Logger: logger})
	}
	return audio.NewRouter(bell, player)
}
