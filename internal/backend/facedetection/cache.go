package facedetection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "facebox:"

// BoxCache stores locator results by key. A cached nil box means "no face".
type BoxCache interface {
	Get(ctx context.Context, key string) (box *Box, found bool, err error)
	Set(ctx context.Context, key string, box *Box) error
	Close() error
}

// NewBoxCache returns a redis backed cache when redisAddress is set, otherwise an in-memory one
func NewBoxCache(ctx context.Context, redisAddress string, ttl time.Duration) (BoxCache, error) {
	if redisAddress == "" {
		return NewMemoryBoxCache(ttl), nil
	}
	return NewRedisBoxCache(ctx, redisAddress, ttl)
}

type RedisBoxCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBoxCache(ctx context.Context, address string, ttl time.Duration) (*RedisBoxCache, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
	}
	return &RedisBoxCache{client: client, ttl: ttl}, nil
}

func (r *RedisBoxCache) Get(ctx context.Context, key string) (*Box, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var box *Box
	if err := json.Unmarshal(raw, &box); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached box: %w", err)
	}
	return box, true, nil
}

func (r *RedisBoxCache) Set(ctx context.Context, key string, box *Box) error {
	raw, err := json.Marshal(box)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err()
}

func (r *RedisBoxCache) Close() error {
	return r.client.Close()
}

type memoryEntry struct {
	box     *Box
	expires time.Time
}

type MemoryBoxCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryBoxCache creates a process local cache. A ttl <= 0 keeps entries forever.
func NewMemoryBoxCache(ttl time.Duration) *MemoryBoxCache {
	return &MemoryBoxCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryBoxCache) Get(_ context.Context, key string) (*Box, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.box, true, nil
}

func (m *MemoryBoxCache) Set(_ context.Context, key string, box *Box) error {
	entry := memoryEntry{box: box}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryBoxCache) Close() error {
	return nil
}

// CachedLocator memoises a locator per key (the stored upload name)
type CachedLocator struct {
	locator Locator
	cache   BoxCache
}

func NewCachedLocator(locator Locator, cache BoxCache) *CachedLocator {
	return &CachedLocator{locator: locator, cache: cache}
}

// Locate returns the cached box for key or runs the wrapped locator and stores its result.
// Cache failures are logged and never fail the lookup.
func (c *CachedLocator) Locate(ctx context.Context, key string, img image.Image) (*Box, error) {
	box, found, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("CachedLocator: cache read failed", "key", key, "error", err)
	} else if found {
		slog.Debug("CachedLocator: cache hit", "key", key, "face_found", box != nil)
		return box, nil
	}

	box, err = c.locator.Locate(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, box); err != nil {
		slog.Warn("CachedLocator: cache write failed", "key", key, "error", err)
	}
	return box, nil
}

func (c *CachedLocator) Close() error {
	return c.cache.Close()
}
