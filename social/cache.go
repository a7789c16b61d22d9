// social/cache.go
package social

import (
	"sync"
)

// FeedCache holds the single serialized feed entry. Entries never
// expire; mutations that change visible feed content delete the entry
// before acknowledging. Concurrent population after a simultaneous miss
// is last-writer-wins, which is acceptable because every populated value
// comes from the same backing read path.
type FeedCache struct {
	mu    sync.RWMutex
	entry []byte
}

func NewFeedCache() *FeedCache {
	return &FeedCache{}
}

// Get returns the cached payload, or false on a miss.
func (c *FeedCache) Get() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return nil, false
	}
	return c.entry, true
}

func (c *FeedCache) Set(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = payload
}

// Invalidate deletes the cached entry.
func (c *FeedCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
