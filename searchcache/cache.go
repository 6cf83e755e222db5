// Package searchcache holds the unfiltered catalogue snapshot that local
// search runs against.
package searchcache

import (
	"strings"
	"sync"

	"github.com/letmevibethatforyou/unicatalog"
)

// Cache holds at most one snapshot of the full catalogue.
// There is no TTL and no revalidation: once populated the snapshot is
// served until Clear.
type Cache struct {
	mu        sync.RWMutex
	snapshot  []unicatalog.University
	populated bool
}

// New creates an empty, unpopulated cache.
// The cache is safe for concurrent operations.
func New() *Cache {
	return &Cache{}
}

// Get returns a copy of the snapshot and whether the cache is populated.
// An unpopulated cache returns an empty slice and false; a populated but
// empty catalogue returns an empty slice and true.
func (c *Cache) Get() ([]unicatalog.University, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp := make([]unicatalog.University, len(c.snapshot))
	copy(cp, c.snapshot)
	return cp, c.populated
}

// Populated reports whether a snapshot has been stored.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// Populate stores data as the snapshot if none is stored yet.
// Returns true if data was stored, false if a snapshot already existed.
// Only unfiltered catalogue fetches may be passed here.
func (c *Cache) Populate(data []unicatalog.University) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.populated {
		return false
	}

	c.snapshot = make([]unicatalog.University, len(data))
	copy(c.snapshot, data)
	c.populated = true
	return true
}

// Clear drops the snapshot and returns the cache to its unpopulated state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	c.populated = false
}

// Size returns the number of universities in the snapshot.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot)
}

// FilterLocal returns the universities whose code or name contains term,
// ignoring case, in snapshot order. A blank term returns snapshot unchanged.
func FilterLocal(snapshot []unicatalog.University, term string) []unicatalog.University {
	if strings.TrimSpace(term) == "" {
		return snapshot
	}

	needle := strings.ToLower(term)
	matches := make([]unicatalog.University, 0)
	for _, u := range snapshot {
		if containsFold(u.Code, needle) || containsFold(u.Name, needle) {
			matches = append(matches, u)
		}
	}
	return matches
}

// containsFold checks if value contains the already lower-cased needle.
func containsFold(value, needle string) bool {
	return strings.Contains(strings.ToLower(value), needle)
}
