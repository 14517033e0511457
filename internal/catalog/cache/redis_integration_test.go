//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gamelib/internal/catalog/cache"
	"gamelib/internal/catalog/models"
	"gamelib/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	c := cache.NewRedis(s.redis.Client, time.Minute)

	_, ok, err := c.GetPlatforms(ctx)
	s.Require().NoError(err)
	s.False(ok)

	platforms := []models.Platform{{ID: 4, Name: "PC"}, {ID: 187, Name: "PlayStation 5"}}
	s.Require().NoError(c.SetPlatforms(ctx, platforms))

	got, ok, err := c.GetPlatforms(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(platforms, got)

	ttl, err := s.redis.Client.TTL(ctx, "gamelib:catalog:platforms").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestCorruptEntryIsAMiss() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "gamelib:catalog:platforms", "not json", time.Minute).Err())

	_, ok, err := cache.NewRedis(s.redis.Client, time.Minute).GetPlatforms(ctx)
	s.NoError(err)
	s.False(ok)
}
