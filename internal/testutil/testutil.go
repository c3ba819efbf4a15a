package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/api"
	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/notify"
	"github.com/dom/contacts-api/internal/repository"
	repoPostgres "github.com/dom/contacts-api/internal/repository/postgres"
	"github.com/dom/contacts-api/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_contacts"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Contact{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"contacts",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// NewTestRedisCache spins up a Redis testcontainer and returns a UserCache
// backed by it.
func NewTestRedisCache(t *testing.T, ttl time.Duration) cache.UserCache {
	t.Helper()

	ctx := context.Background()

	container, err := tcRedis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	users, err := cache.NewRedisUserCache(url, ttl)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		users.Close()
	})

	return users
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:            "0", // Random port
		Environment:     "test",
		JWTSecret:       "test-jwt-secret-key-for-testing-only",
		AccessTokenTTL:  150 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		VerifyTokenTTL:  7 * 24 * time.Hour,
		UserCacheTTL:    900 * time.Second,
		PublicBaseURL:   "http://localhost:8080",
	}
}

// RecordingNotifier captures verification emails instead of sending them.
// Safe for concurrent use; the auth service dispatches from a goroutine.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []RecordedEmail
}

type RecordedEmail struct {
	Email    string
	Username string
	Token    string
}

func (n *RecordingNotifier) NotifyVerification(_ context.Context, email, username, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, RecordedEmail{Email: email, Username: username, Token: token})
	return nil
}

// Sent returns a copy of the captured emails.
func (n *RecordingNotifier) Sent() []RecordedEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]RecordedEmail(nil), n.sent...)
}

// WaitForEmail blocks until at least n emails were captured or the timeout
// elapses, returning the captured set.
func (n *RecordingNotifier) WaitForEmail(t *testing.T, count int) []RecordedEmail {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if sent := n.Sent(); len(sent) >= count {
			return sent
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d verification emails", count)
	return nil
}

var _ notify.VerificationNotifier = (*RecordingNotifier)(nil)

// NullAvatarStore fails every upload, exercising the best-effort contract.
type NullAvatarStore struct{}

func (NullAvatarStore) Upload(context.Context, string, []byte) (string, error) {
	return "", fmt.Errorf("avatar storage unavailable")
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Cache    cache.UserCache
	Notifier *RecordingNotifier
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	users := cache.NewMemoryUserCache(cfg.UserCacheTTL)
	notifier := &RecordingNotifier{}

	services := service.NewServices(repos, users, notifier, NullAvatarStore{}, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Cache:    users,
		Notifier: notifier,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// URL returns the full URL for a given path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
