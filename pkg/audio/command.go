package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/deskclock/deskclock-go/pkg/ringer"
)

// Command placeholders.
const (
	PlaceholderURI    = "{uri}"
	PlaceholderVolume = "{volume}"
)

// ErrUnknownDuration is returned when a ringtone's length cannot be
// determined.
var ErrUnknownDuration = errors.New("ringtone duration unknown")

// CommandConfig configures a Command output.
type CommandConfig struct {
	// Args is the player command line. "{uri}" is replaced with the local
	// path of the ringtone and "{volume}" with a percentage.
	Args []string

	// Lengths optionally maps ringtone URIs to their natural length.
	Lengths map[string]time.Duration

	Logger *slog.Logger
}

// Command plays ringtones by running an external player once per loop
// iteration. Volume changes apply from the next iteration.
type Command struct {
	cfg CommandConfig

	mu      sync.Mutex
	next    ringer.Handle
	playing map[ringer.Handle]*commandLoop
	failed  func(ringer.Handle, error)
}

type commandLoop struct {
	cancel  context.CancelFunc
	volume  float64
	started bool
	done    chan struct{}
}

// NewCommand creates a command output.
func NewCommand(cfg CommandConfig) *Command {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Command{cfg: cfg, playing: make(map[ringer.Handle]*commandLoop)}
}

// OnFailure registers fn for players that exit with an error, such as a
// ringtone the player cannot decode.
func (c *Command) OnFailure(fn func(ringer.Handle, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = fn
}

// Play resolves uri and starts the player. A missing player or ringtone file
// fails immediately; a player that exits with an error later is reported
// through OnFailure.
func (c *Command) Play(uri string, looping bool, volume float64) (ringer.Handle, error) {
	if len(c.cfg.Args) == 0 {
		return 0, errors.New("no player command configured")
	}
	if _, err := exec.LookPath(c.cfg.Args[0]); err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	path, err := LocalPath(uri)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("ringtone: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &commandLoop{cancel: cancel, volume: volume, done: make(chan struct{})}

	c.mu.Lock()
	c.next++
	h := c.next
	c.playing[h] = l
	c.mu.Unlock()

	go c.run(ctx, h, l, path, looping)
	return h, nil
}

func (c *Command) run(ctx context.Context, h ringer.Handle, l *commandLoop, path string, looping bool) {
	err := c.loop(ctx, l, path, looping)

	c.mu.Lock()
	live := c.playing[h] == l
	if live {
		delete(c.playing, h)
	}
	fn := c.failed
	c.mu.Unlock()
	close(l.done)

	if err != nil && live {
		c.cfg.Logger.Warn("audio: player failed", "path", path, "error", err)
		if fn != nil {
			fn(h, err)
		}
	}
}

// loop runs the player until it ends, fails or ctx is cancelled. Errors
// caused by cancellation are not reported.
func (c *Command) loop(ctx context.Context, l *commandLoop, path string, looping bool) error {
	for {
		c.mu.Lock()
		volume := l.volume
		l.started = true
		c.mu.Unlock()

		cmd := exec.CommandContext(ctx, c.cfg.Args[0], c.expand(path, volume)[1:]...)
		err := cmd.Run()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if !looping {
			return nil
		}
	}
}

func (c *Command) expand(path string, volume float64) []string {
	percent := strconv.Itoa(int(math.Round(volume * 100)))
	args := make([]string, len(c.cfg.Args))
	for i, a := range c.cfg.Args {
		a = strings.ReplaceAll(a, PlaceholderURI, path)
		args[i] = strings.ReplaceAll(a, PlaceholderVolume, percent)
	}
	return args
}

func (c *Command) SetVolume(h ringer.Handle, volume float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.playing[h]; ok {
		l.volume = volume
	}
	return nil
}

// Stop kills the player and waits for its loop to exit.
func (c *Command) Stop(h ringer.Handle) error {
	c.mu.Lock()
	l, ok := c.playing[h]
	delete(c.playing, h)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	l.cancel()
	<-l.done
	return nil
}

func (c *Command) IsPlaying(h ringer.Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.playing[h]
	return ok && l.started
}

func (c *Command) Duration(uri string) (time.Duration, error) {
	if d, ok := c.cfg.Lengths[uri]; ok && d > 0 {
		return d, nil
	}
	return 0, ErrUnknownDuration
}

// LocalPath turns a file URI or a plain path into a filesystem path.
func LocalPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("ringtone uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported ringtone scheme %q", u.Scheme)
	}
	return u.Path, nil
}

var (
	_ ringer.Output          = (*Command)(nil)
	_ ringer.FailureReporter = (*Command)(nil)
)
