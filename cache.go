package melcloudhome

import (
	"sync"
	"time"
)

// profileCache holds the most recently fetched topology snapshot. Snapshots
// are immutable once stored: a new fetch replaces the whole profile, nothing
// patches it in place. Invalidation keeps the snapshot readable but makes
// validity checks fail until the next set.
type profileCache struct {
	mu          sync.Mutex
	profile     *UserProfile
	fetchedAt   time.Time
	invalidated bool

	now func() time.Time // swapped out in tests
}

func newProfileCache() *profileCache {
	return &profileCache{now: time.Now}
}

func (c *profileCache) get() *UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *profileCache) set(profile *UserProfile) {
	c.mu.Lock()
	c.profile = profile
	c.fetchedAt = c.now()
	c.invalidated = false
	c.mu.Unlock()
}

func (c *profileCache) isValid(ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil || c.invalidated {
		return false
	}
	return c.now().Sub(c.fetchedAt) < ttl
}

func (c *profileCache) invalidate() {
	c.mu.Lock()
	c.invalidated = true
	c.mu.Unlock()
}
