// internal/game/countdown.go
//
// Cancellable countdown capability. The engine depends only on this
// interface, never on a specific scheduling primitive, so tests can drive
// expiry by hand and the remaining time is always derived from the wall
// clock rather than a tick counter (it survives process suspension
// without drifting).

package game

import (
	"sync"
	"time"
)

// Countdown is a single-shot timer with wall-clock remaining time.
// Start replaces any running countdown; Cancel makes a pending expiry
// callback a no-op. Remaining is clamped to [0, budget] so a clock jump in
// either direction never yields a negative or inflated value.
type Countdown interface {
	Start(budget time.Duration, onExpire func())
	Remaining() time.Duration
	Cancel()
}

// NewCountdown returns the wall-clock Countdown used in production.
// now is the clock source; pass nil for time.Now.
func NewCountdown(now func() time.Time) Countdown {
	if now == nil {
		now = time.Now
	}
	return &wallCountdown{now: now}
}

type wallCountdown struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	budget  time.Duration
	timer   *time.Timer
	gen     int // incremented on Start/Cancel to invalidate stale firings
	running bool
}

func (c *wallCountdown) Start(budget time.Duration, onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
	gen := c.gen
	c.started = c.now()
	c.budget = budget
	c.running = true
	c.timer = time.AfterFunc(budget, func() {
		c.mu.Lock()
		if !c.running || c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.running = false
		c.mu.Unlock()
		onExpire()
	})
}

func (c *wallCountdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	rem := c.budget - c.now().Sub(c.started)
	if rem < 0 {
		return 0
	}
	if rem > c.budget {
		return c.budget
	}
	return rem
}

func (c *wallCountdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
}

func (c *wallCountdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.running = false
}
