package atlas

import (
	"sync"
	"time"

	"github.com/eringen/atlas/content"
)

// ErrNotFound is returned when a requested category or entry does not exist.
var ErrNotFound = content.ErrNotFound

// EntryCache is an in-memory cache of the loaded content tree with TTL.
type EntryCache struct {
	mu      sync.RWMutex
	lib     *content.Library
	fetched time.Time
	ttl     time.Duration
	loader  content.Loader
}

// NewEntryCache creates an EntryCache backed by loader.
func NewEntryCache(loader content.Loader, ttl time.Duration) *EntryCache {
	return &EntryCache{loader: loader, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.lib != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read reloads the tree.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.lib = nil
	c.mu.Unlock()
}

// Library returns the cached content tree, reloading it when stale.
// It tries a read lock first and only takes the write lock to reload.
func (c *EntryCache) Library() (*content.Library, error) {
	c.mu.RLock()
	if c.valid() {
		lib := c.lib
		c.mu.RUnlock()
		return lib, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.lib, nil
	}
	lib, err := c.loader.Load()
	if err != nil {
		return nil, err
	}
	c.lib = lib
	c.fetched = time.Now()
	return lib, nil
}

// Categories returns every category with its entries.
func (c *EntryCache) Categories() ([]content.Category, error) {
	lib, err := c.Library()
	if err != nil {
		return nil, err
	}
	return lib.Categories, nil
}

// Category returns one category by name.
func (c *EntryCache) Category(name string) (content.Category, error) {
	lib, err := c.Library()
	if err != nil {
		return content.Category{}, err
	}
	return lib.Category(name)
}

// Entry returns a single entry.
func (c *EntryCache) Entry(category, slug string) (content.Entry, error) {
	lib, err := c.Library()
	if err != nil {
		return content.Entry{}, err
	}
	return lib.Entry(category, slug)
}

// Summaries returns the pin-linking lookup table.
func (c *EntryCache) Summaries() ([]content.Summary, error) {
	lib, err := c.Library()
	if err != nil {
		return nil, err
	}
	return lib.Summaries(), nil
}

// Resolve reports the title of category/slug; it backs wiki link rendering.
func (c *EntryCache) Resolve(category, slug string) (string, bool) {
	lib, err := c.Library()
	if err != nil {
		return "", false
	}
	return lib.Resolve(category, slug)
}
