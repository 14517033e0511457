package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelib/internal/catalog/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Hour)
	c.now = func() time.Time { return now }

	_, ok, err := c.GetPlatforms(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	input := []models.Platform{{ID: 187, Name: "PlayStation 5"}}
	require.NoError(t, c.SetPlatforms(ctx, input))
	input[0].Name = "mutated"

	got, ok, err := c.GetPlatforms(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PlayStation 5", got[0].Name)

	now = now.Add(time.Hour)
	_, ok, _ = c.GetPlatforms(ctx)
	assert.False(t, ok, "expired entry misses")
}

func TestMemoryCache_EmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	require.NoError(t, c.SetPlatforms(ctx, nil))

	got, ok, err := c.GetPlatforms(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}
