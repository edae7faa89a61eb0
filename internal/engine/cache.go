package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching: L1 in-memory + L2 Redis.
// L1 is fast but lost on restart. L2 survives restarts, which matters for
// transcripts: a retrain should not re-scrape videos fetched last week.
var ingestCache *tieredCache

// CacheTTL controls how long cached entries stay valid. Channel metadata
// goes stale in days; transcripts effectively never do, but one TTL keeps
// eviction simple.
var CacheTTL = 24 * time.Hour

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// tieredCache implements L1 (memory) + L2 (Redis) caching.
type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the 2-tier cache. Call after Init().
// redisURL can be empty to disable L2.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	ingestCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a stable cache key from the given parts.
func CacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("coachtube:%x", sum[:16])
}

// CacheGet returns the raw cached bytes for key, checking L1 then L2.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if ingestCache == nil {
		return nil, false
	}
	if v, ok := ingestCache.l1.Load(key); ok {
		entry := v.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			cacheHits.Add(1)
			return entry.data, true
		}
		ingestCache.l1.Delete(key)
	}
	if ingestCache.rdb != nil {
		data, err := ingestCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			// Promote to L1.
			ingestCache.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(ingestCache.ttl)})
			cacheHits.Add(1)
			return data, true
		}
	}
	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores raw bytes under key in both tiers.
func CacheSet(ctx context.Context, key string, data []byte) {
	if ingestCache == nil {
		return
	}
	ingestCache.evictIfNeeded()
	ingestCache.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(ingestCache.ttl)})
	if ingestCache.rdb != nil {
		if err := ingestCache.rdb.Set(ctx, key, data, ingestCache.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheLoadJSON tries to load a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	data, ok := CacheGet(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it under key.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data)
}

// CacheStats returns hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded drops expired entries, then oldest-expiring entries, when L1 is full.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	count := 0
	now := time.Now()
	c.l1.Range(func(key, value any) bool {
		if now.After(value.(*cacheEntry).expiresAt) {
			c.l1.Delete(key)
			return true
		}
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}
	// Still over budget: drop whatever Range hands us first. Precise LRU is
	// not worth a second index for a cache this size.
	excess := count - c.maxEntries + 1
	c.l1.Range(func(key, _ any) bool {
		c.l1.Delete(key)
		excess--
		return excess > 0
	})
}

func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.l1.Range(func(key, value any) bool {
			if now.After(value.(*cacheEntry).expiresAt) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}
