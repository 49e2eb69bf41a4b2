package cron

import "sync"

// Cache memoizes successful parses by expression text. Expressions are
// immutable, so cached values are shared freely. Entries are never
// evicted; schedule texts are few and do not change.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Expression
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Expression)}
}

// Parse returns the cached expression for text, parsing and storing it
// on first use. Parse errors are returned and not cached.
func (c *Cache) Parse(text string) (*Expression, error) {
	c.mu.RLock()
	expr, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return expr, nil
	}

	expr, err := ParseExpression(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.entries[text]; ok {
		expr = existing
	} else {
		c.entries[text] = expr
	}
	c.mu.Unlock()
	return expr, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
