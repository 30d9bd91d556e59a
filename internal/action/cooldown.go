package action

import (
	"sync"
	"time"
)

// Cooldowns tracks the last successful fire of each action.
type Cooldowns struct {
	mu   sync.Mutex
	last map[Name]time.Time
}

// NewCooldowns returns an empty tracker; every action is ready.
func NewCooldowns() *Cooldowns {
	return &Cooldowns{last: make(map[Name]time.Time)}
}

// Remaining returns how long n must still wait at now. Zero means ready.
func (c *Cooldowns) Remaining(n Name, interval time.Duration, now time.Time) time.Duration {
	if interval <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[n]
	if !ok {
		return 0
	}
	if elapsed := now.Sub(last); elapsed < interval {
		return interval - elapsed
	}
	return 0
}

// Mark records a successful fire of n at now.
func (c *Cooldowns) Mark(n Name, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[n] = now
}

// Last returns the last fire time of n.
func (c *Cooldowns) Last(n Name) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.last[n]
	return t, ok
}
