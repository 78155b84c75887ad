package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yooncheol/bapsang/internal/logging"
)

// cachedSnippets is one cache entry with its expiry.
type cachedSnippets struct {
	snippets  []Snippet
	expiresAt time.Time
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	HitRate   float64
}

// CachingRetriever memoizes an inner retriever with an LRU bounded by
// entry count and a per-entry TTL. Identical queries within the TTL hit
// the cache and never reach the backend.
type CachingRetriever struct {
	inner  Retriever
	lru    *lru.Cache[string, *cachedSnippets]
	ttl    time.Duration
	logger *logging.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCachingRetriever wraps inner with a cache of at most entries items
// that expire after ttl.
func NewCachingRetriever(inner Retriever, entries int, ttl time.Duration, logger *logging.Logger) (*CachingRetriever, error) {
	if entries <= 0 {
		return nil, fmt.Errorf("cache entries must be positive, got %d", entries)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %v", ttl)
	}
	if logger == nil {
		logger = logging.GetLogger("retrieval.cache")
	}

	c := &CachingRetriever{
		inner:  inner,
		ttl:    ttl,
		logger: logger,
	}
	cache, err := lru.NewWithEvict[string, *cachedSnippets](entries, func(key string, _ *cachedSnippets) {
		c.evictions.Add(1)
		c.logger.Debug("retrieval cache EVICT: key=%s", key[:12])
	})
	if err != nil {
		return nil, fmt.Errorf("create retrieval cache: %w", err)
	}
	c.lru = cache
	return c, nil
}

// Retrieve implements Retriever.
func (c *CachingRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	key := cacheKey(query, topK)

	if entry, ok := c.lru.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			c.hits.Add(1)
			c.logger.Debug("retrieval cache HIT: key=%s", key[:12])
			return entry.snippets, nil
		}
		c.lru.Remove(key)
	}
	c.misses.Add(1)

	snippets, err := c.inner.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, &cachedSnippets{
		snippets:  snippets,
		expiresAt: time.Now().Add(c.ttl),
	})
	return snippets, nil
}

// Stats returns hit/miss counters.
func (c *CachingRetriever) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		Entries:   c.lru.Len(),
		HitRate:   rate,
	}
}

// Clear drops every cached entry.
func (c *CachingRetriever) Clear() {
	c.lru.Purge()
}

func cacheKey(query string, topK int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", topK, query)))
	return hex.EncodeToString(h[:])
}
