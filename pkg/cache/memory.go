package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/memlayout/pkg/observability"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with a non-positive size.
const DefaultMemoryEntries = 64

// MemoryCache is a bounded in-process LRU. Entries also expire after the
// TTL given to Set, capped at [TTLArtifact]. Safe for concurrent use.
type MemoryCache struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries items.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, memoryEntry](maxEntries, nil, TTLArtifact),
		now: time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if ok && !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		ok = false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType(key))
	return e.data, true, nil
}

// Set stores data under key. A non-positive ttl keeps the entry until it
// is evicted or reaches the cache-wide cap.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// keyType returns the prefix of key, used as the hook label.
func keyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

var _ Cache = (*MemoryCache)(nil)
