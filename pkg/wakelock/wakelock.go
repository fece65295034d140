// Package wakelock keeps the host awake while the clock engine has pending
// time-critical work, such as a timer about to expire or an alarm sounding.
package wakelock

import (
	"log/slog"
	"sync"
)

// WakeLock is a tagged, reference-counted keep-awake request.
type WakeLock interface {
	Acquire(tag string)
	Release(tag string)
}

// Counter is a WakeLock that only counts holders. Embedders that can
// actually inhibit sleep observe it through OnChange.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
	total  int
	logger *slog.Logger

	// OnChange, if set, is called with the new held state whenever it flips.
	// It runs with the counter locked and must not call back into it.
	OnChange func(held bool)
}

// NewCounter creates an unheld counter.
func NewCounter(logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{counts: make(map[string]int), logger: logger}
}

func (c *Counter) Acquire(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[tag]++
	c.total++
	if c.total == 1 && c.OnChange != nil {
		c.OnChange(true)
	}
}

// Release drops one hold of tag. Releasing a tag that is not held is logged
// and ignored.
func (c *Counter) Release(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[tag] == 0 {
		c.logger.Warn("wakelock: release without acquire", "tag", tag)
		return
	}
	c.counts[tag]--
	if c.counts[tag] == 0 {
		delete(c.counts, tag)
	}
	c.total--
	if c.total == 0 && c.OnChange != nil {
		c.OnChange(false)
	}
}

// Held reports whether any tag holds the lock.
func (c *Counter) Held() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total > 0
}

// HeldBy returns the number of holds for tag.
func (c *Counter) HeldBy(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[tag]
}

var _ WakeLock = (*Counter)(nil)
