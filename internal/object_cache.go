package internal

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ObjectCache is the identity map of materialized wrappers, keyed by object id.
// At most one value is kept per id; GetOrSet never replaces an existing entry.
type ObjectCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]any
}

// NewObjectCache returns an empty cache.
func NewObjectCache() *ObjectCache {
	return &ObjectCache{entries: make(map[uuid.UUID]any)}
}

// Get returns the cached value for id. Ids that are not uuids never hit.
func (c *ObjectCache) Get(ctx context.Context, id any) (any, bool) {
	key, ok := toUUID(id)
	if !ok {
		EmitCacheLookup(ctx, false)
		return nil, false
	}
	c.mu.RLock()
	v, found := c.entries[key]
	c.mu.RUnlock()
	EmitCacheLookup(ctx, found)
	return v, found
}

// GetOrSet stores value under id unless an entry already exists, and returns the
// entry that is cached afterwards. loaded reports whether that entry was already present.
func (c *ObjectCache) GetOrSet(id any, value any) (actual any, loaded bool) {
	key, ok := toUUID(id)
	if !ok {
		return value, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, found := c.entries[key]; found {
		return existing, true
	}
	c.entries[key] = value
	return value, false
}

// Set stores value under id, replacing any existing entry.
func (c *ObjectCache) Set(id any, value any) {
	key, ok := toUUID(id)
	if !ok {
		return
	}
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Delete drops the entry for id.
func (c *ObjectCache) Delete(id any) {
	key, ok := toUUID(id)
	if !ok {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *ObjectCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]any)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ObjectCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
