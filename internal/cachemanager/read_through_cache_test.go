package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	manager := NewInMemoryCacheManager[string, []string]("decks", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	cache := NewReadThroughCache[string, []string, string](
		manager,
		func(ctx context.Context, deck string) ([]string, error) {
			calls++
			return []string{deck + "-card"}, nil
		},
		true,
	)

	for i := 0; i < 2; i++ {
		got, err := cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
		require.NoError(t, err)
		require.Equal(t, []string{"todo-card"}, got)
	}
	require.Equal(t, 2, calls, "disabled cache must call the loader every time")
}

func TestReadThroughCache_Get_CachesLoaderResult(t *testing.T) {
	manager := NewInMemoryCacheManager[string, []string]("decks", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	cache := NewReadThroughCache[string, []string, string](
		manager,
		func(ctx context.Context, deck string) ([]string, error) {
			calls++
			return []string{deck + "-card"}, nil
		},
		false,
	)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
		require.NoError(t, err)
		require.Equal(t, []string{"todo-card"}, got)
	}
	require.Equal(t, 1, calls, "subsequent gets must hit the cache")
}

func TestReadThroughCache_Get_LoaderErrorNotCached(t *testing.T) {
	manager := NewInMemoryCacheManager[string, []string]("decks", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	cache := NewReadThroughCache[string, []string, string](
		manager,
		func(ctx context.Context, deck string) ([]string, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("db locked")
			}
			return []string{deck + "-card"}, nil
		},
		false,
	)

	_, err := cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
	require.Error(t, err)

	got, err := cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"todo-card"}, got)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	manager := NewInMemoryCacheManager[string, []string]("decks", DefaultExpiration, DefaultCleanupInterval)
	calls := 0

	cache := NewReadThroughCache[string, []string, string](
		manager,
		func(ctx context.Context, deck string) ([]string, error) {
			calls++
			return []string{deck + "-card"}, nil
		},
		false,
	)

	_, err := cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(context.Background(), "deck:todo"))

	_, err = cache.Get(context.Background(), "deck:todo", "todo", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls, "invalidated key must reload")
}
