package feed

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pawgrove/pawgrove/backend/internal/models"
)

// DefaultCacheTTL is how long a processed feed stays servable without
// recomputation
const DefaultCacheTTL = 5 * time.Minute

// DefaultCacheSize bounds the number of (viewer, scope) entries held at once
const DefaultCacheSize = 4096

// Entry holds one fully processed, pre-pagination feed so different cursor
// requests against the same viewer and scope reuse a single ranking
type Entry struct {
	Posts     []models.Post
	Total     int
	Signature string
	CachedAt  time.Time
}

// Cache memoizes processed feeds per (viewer, scope) key. Implementations
// must be safe for concurrent use; the pipeline tolerates racing recomputes
// because recomputation is idempotent and overwriting with a fresher entry
// is harmless.
type Cache interface {
	Get(key string) (*Entry, bool)
	Put(key string, entry *Entry)
}

// Key builds the cache key for a viewer and scope
func Key(viewerID string, scope Scope) string {
	return viewerID + ":" + string(scope)
}

// LRUCache is a bounded, TTL-expiring Cache.
type LRUCache struct {
	lru *expirable.LRU[string, *Entry]
}

// NewLRUCache creates a cache holding at most size entries, each valid for
// ttl after being stored
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &LRUCache{
		lru: expirable.NewLRU[string, *Entry](size, nil, ttl),
	}
}

// Get returns the stored entry for key if it has not expired. Signature
// comparison is the caller's responsibility.
func (c *LRUCache) Get(key string) (*Entry, bool) {
	return c.lru.Get(key)
}

// Put stores or overwrites the entry for key
func (c *LRUCache) Put(key string, entry *Entry) {
	c.lru.Add(key, entry)
}
