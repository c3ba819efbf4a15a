package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dom/contacts-api/internal/domain"
)

type memoryEntry struct {
	user      domain.User
	expiresAt time.Time
}

type memoryUserCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryUserCache is a process-local UserCache used in tests and as a
// fallback when no Redis address is configured.
func NewMemoryUserCache(ttl time.Duration) UserCache {
	return &memoryUserCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryUserCache) Get(_ context.Context, email string) (*domain.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[email]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, email)
		return nil, false, nil
	}

	user := entry.user
	return &user, true, nil
}

func (c *memoryUserCache) Set(_ context.Context, email string, user *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[email] = memoryEntry{user: *user, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

func (c *memoryUserCache) Delete(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, email)
	return nil
}

func (c *memoryUserCache) Close() error { return nil }
