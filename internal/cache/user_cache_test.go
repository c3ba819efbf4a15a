package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:        1,
		Username:  "cached",
		Email:     "cached@example.com",
		Confirmed: true,
	}
}

func TestMemoryUserCache(t *testing.T) {
	users := cache.NewMemoryUserCache(time.Minute)
	ctx := context.Background()

	// Miss before set
	_, ok, err := users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, users.Set(ctx, "cached@example.com", testUser()))

	got, ok, err := users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "cached", got.Username)

	require.NoError(t, users.Delete(ctx, "cached@example.com"))
	_, ok, err = users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryUserCache_Expiry(t *testing.T) {
	users := cache.NewMemoryUserCache(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, users.Set(ctx, "cached@example.com", testUser()))

	_, ok, err := users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok, err = users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	users := cache.NewMemoryUserCache(time.Minute)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context, email string) (*domain.User, error) {
		loads++
		return testUser(), nil
	}

	// First resolution loads and populates
	got, err := cache.GetOrLoad(ctx, users, "cached@example.com", loader)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, 1, loads)

	// Second resolution is a cache hit
	got, err = cache.GetOrLoad(ctx, users, "cached@example.com", loader)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, 1, loads)
}

func TestGetOrLoad_LoaderError(t *testing.T) {
	users := cache.NewMemoryUserCache(time.Minute)
	ctx := context.Background()

	wantErr := errors.New("no such user")
	_, err := cache.GetOrLoad(ctx, users, "missing@example.com", func(ctx context.Context, email string) (*domain.User, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// The failure was not cached
	_, ok, err := users.Get(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
