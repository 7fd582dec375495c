package catalog

import (
	"sync"

	"github.com/spigell/resume-matcher/internal/evaluator"
)

// Cache maps template keys to templates for the lifetime of a session.
// Entries are never evicted; a Put for an existing key replaces it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*evaluator.Template
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*evaluator.Template)}
}

func (c *Cache) Get(key string) (*evaluator.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[key]
	return t, ok
}

func (c *Cache) Put(key string, t *evaluator.Template) {
	if t == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]*evaluator.Template)
	}
	c.entries[key] = t
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Keys returns the cached keys in no particular order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*evaluator.Template)
}
