// Package cache holds rendered crawl responses in an expiring LRU so
// repeat crawls of the same URL skip the browser entirely.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is one cached render.
type Entry struct {
	URL       string
	FinalURL  string
	Title     string
	Markdown  string
	FetchedAt time.Time
}

// Cache is a bounded, TTL-expiring render cache. Safe for concurrent use.
type Cache struct {
	entries *lru.LRU[string, Entry]
}

// New builds a cache holding at most maxEntries renders, each evicted
// after ttl regardless of use.
func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{entries: lru.NewLRU[string, Entry](maxEntries, nil, ttl)}
}

// Get returns the cached render for url if one exists and is younger
// than maxAge. A zero maxAge accepts any entry the TTL has not evicted.
func (c *Cache) Get(url string, maxAge time.Duration) (Entry, bool) {
	e, ok := c.entries.Get(url)
	if !ok {
		return Entry{}, false
	}
	if maxAge > 0 && time.Since(e.FetchedAt) > maxAge {
		return Entry{}, false
	}
	return e, true
}

// Put stores a render, stamping it with the current time.
func (c *Cache) Put(e Entry) {
	e.FetchedAt = time.Now()
	c.entries.Add(e.URL, e)
}

// Len reports how many renders are currently cached.
func (c *Cache) Len() int {
	return c.entries.Len()
}
