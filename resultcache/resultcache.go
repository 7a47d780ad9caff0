// Package resultcache implements spec's ResultCache: a short-TTL cache of
// finished result pages keyed on a hash of the effective search
// parameters (spec §4.9 step 1/9). Reads and writes are best-effort: a
// cache failure never fails the request (spec §7).
package resultcache

import (
	"time"

	"github.com/soukfinder/searchcore/catalog"
	"github.com/soukfinder/searchcore/internal/ttlcache"
)

// Cache is a process-local result-page cache.
type Cache struct {
	ttl   time.Duration
	pages *ttlcache.Cache[catalog.ResultPage]
}

// New constructs a Cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, pages: ttlcache.New[catalog.ResultPage]()}
}

// Get returns the cached page for key, if any and unexpired.
func (c *Cache) Get(key string) (catalog.ResultPage, bool) {
	return c.pages.Get(key)
}

// Put stores page under key, but only if it contains at least one listing
// (spec §4.9 step 9: "Cache the page only if it contains >= 1 listing").
func (c *Cache) Put(key string, page catalog.ResultPage) {
	if len(page.Listings) == 0 {
		return
	}
	c.pages.Set(key, page, c.ttl)
}
