package config_test

import (
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	// Submission port: smtp.SendMail upgrades via STARTTLS and cannot speak
	// implicit TLS on 465
	assert.Equal(t, "587", cfg.MailPort)
	assert.Equal(t, 900*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, 150*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.VerifyTokenTTL)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}
