// Package cache keeps the catalog platform list between provider calls.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gamelib/internal/catalog/models"
)

const platformsKey = "gamelib:catalog:platforms"

// RedisCache stores the platform list as one JSON value with a TTL, shared by
// every instance.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetPlatforms returns ok=false on a miss.
func (c *RedisCache) GetPlatforms(ctx context.Context) ([]models.Platform, bool, error) {
	raw, err := c.client.Get(ctx, platformsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read platform cache: %w", err)
	}
	var platforms []models.Platform
	if err := json.Unmarshal(raw, &platforms); err != nil {
		// a corrupt entry is a miss; the next fetch overwrites it
		return nil, false, nil
	}
	return platforms, true, nil
}

func (c *RedisCache) SetPlatforms(ctx context.Context, platforms []models.Platform) error {
	raw, err := json.Marshal(platforms)
	if err != nil {
		return fmt.Errorf("encode platforms: %w", err)
	}
	if err := c.client.Set(ctx, platformsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write platform cache: %w", err)
	}
	return nil
}

// Memory is the single-process fallback used when Redis is not configured.
type Memory struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	platforms []models.Platform
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now}
}

func (m *Memory) GetPlatforms(_ context.Context) ([]models.Platform, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.platforms == nil || !m.now().Before(m.expiresAt) {
		return nil, false, nil
	}
	out := make([]models.Platform, len(m.platforms))
	copy(out, m.platforms)
	return out, true, nil
}

func (m *Memory) SetPlatforms(_ context.Context, platforms []models.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.platforms = make([]models.Platform, len(platforms))
	copy(m.platforms, platforms)
	m.expiresAt = m.now().Add(m.ttl)
	return nil
}
