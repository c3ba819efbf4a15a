package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/contacts-api/internal/api"
	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/notify"
	"github.com/dom/contacts-api/internal/repository/postgres"
	"github.com/dom/contacts-api/internal/service"
	"github.com/dom/contacts-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Identity cache: Redis when configured, in-process otherwise
	var users cache.UserCache
	if cfg.RedisURL != "" {
		users, err = cache.NewRedisUserCache(cfg.RedisURL, cfg.UserCacheTTL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
	} else {
		users = cache.NewMemoryUserCache(cfg.UserCacheTTL)
	}
	defer users.Close()

	// Best-effort collaborators
	notifier := notify.NewNotifier(cfg)
	avatars, err := storage.NewS3AvatarStore(cfg)
	if err != nil {
		log.Fatalf("failed to create avatar store: %v", err)
	}

	// Initialize services
	services := service.NewServices(repos, users, notifier, avatars, cfg)

	// Initialize router
	router := api.NewRouter(services, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
