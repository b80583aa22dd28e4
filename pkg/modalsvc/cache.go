package modalsvc

import (
	"sync"
	"time"
)

// MemoryCache is an in-process TemplateCache. Entries live as long as the
// cache does.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the cached markup for key, or "" and false on miss.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores markup under key, replacing any existing entry.
func (c *MemoryCache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
