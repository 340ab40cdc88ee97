// Package notification implements the transient toast channel. It holds
// at most one active message; showing a new one replaces any pending
// message and restarts the auto-clear timer.
package notification

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is how long a message stays visible unless cleared.
const DefaultDelay = 3 * time.Second

// Severity classifies a notification for presentation purposes.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one message shown to the user.
type Notification struct {
	Message  string
	Severity Severity
}

// Center owns the single active notification.
type Center struct {
	mu         sync.Mutex
	delay      time.Duration
	logger     *slog.Logger
	current    *Notification
	generation uint64
}

// NewCenter creates a notification center. A non-positive delay falls
// back to DefaultDelay.
func NewCenter(delay time.Duration, logger *slog.Logger) *Center {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Center{
		delay:  delay,
		logger: logger,
	}
}

// Show replaces the active notification and restarts the auto-clear
// timer. An empty severity defaults to success.
func (c *Center) Show(message string, severity Severity) {
	if severity == "" {
		severity = SeveritySuccess
	}

	c.mu.Lock()
	c.current = &Notification{Message: message, Severity: severity}
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.logger.Info("notification shown",
		slog.String("message", message),
		slog.String("severity", string(severity)),
	)

	// The timer from a replaced message may still fire; the generation
	// check makes its clear a no-op.
	time.AfterFunc(c.delay, func() {
		c.clearGeneration(generation)
	})
}

// Clear empties the channel immediately. Clearing an already-empty
// channel is a no-op.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Current returns a copy of the active notification, or nil.
func (c *Center) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	copied := *c.current
	return &copied
}

func (c *Center) clearGeneration(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return
	}
	c.current = nil
}
