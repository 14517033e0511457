package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelib/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parse REDIS_URL")
}

func TestApplyPool(t *testing.T) {
	opts := &redis.Options{PoolSize: 3, DialTimeout: time.Second}
	applyPool(opts, config.RedisConfig{PoolSize: 10, ReadTimeout: 2 * time.Second})

	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout, "zero keeps the parsed value")
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}
