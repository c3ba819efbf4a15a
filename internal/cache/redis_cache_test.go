package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisUserCache(t *testing.T) {
	users := testutil.NewTestRedisCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	user := testUser()
	user.Avatar = nil
	require.NoError(t, users.Set(ctx, user.Email, user))

	got, ok, err := users.Get(ctx, user.Email)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.Confirmed, got.Confirmed)

	require.NoError(t, users.Delete(ctx, user.Email))
	_, ok, err = users.Get(ctx, user.Email)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUserCache_TTL(t *testing.T) {
	users := testutil.NewTestRedisCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, users.Set(ctx, "cached@example.com", testUser()))

	_, ok, err := users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1500 * time.Millisecond)

	_, ok, err = users.Get(ctx, "cached@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUserCache_GetOrLoad(t *testing.T) {
	users := testutil.NewTestRedisCache(t, time.Minute)
	ctx := context.Background()

	count := 0
	loader := func(ctx context.Context, email string) (*domain.User, error) {
		count++
		return testUser(), nil
	}

	got, err := cache.GetOrLoad(ctx, users, "cached@example.com", loader)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, 1, count)

	got, err = cache.GetOrLoad(ctx, users, "cached@example.com", loader)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, 1, count)
}
