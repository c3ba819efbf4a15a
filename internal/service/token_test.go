package service_test

import (
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codecConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-jwt-secret-key-for-testing-only",
		AccessTokenTTL:  150 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		VerifyTokenTTL:  7 * 24 * time.Hour,
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := service.NewTokenCodec(codecConfig())

	tests := []struct {
		name   string
		mint   func(string) (string, error)
		scope  string
	}{
		{name: "access token", mint: codec.NewAccessToken, scope: service.ScopeAccess},
		{name: "refresh token", mint: codec.NewRefreshToken, scope: service.ScopeRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.mint("user@example.com")
			require.NoError(t, err)

			claims, err := codec.Decode(token, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, "user@example.com", claims.Subject)
			assert.Equal(t, tt.scope, claims.Scope)
		})
	}
}

func TestTokenCodec_ScopeEnforcement(t *testing.T) {
	codec := service.NewTokenCodec(codecConfig())

	access, err := codec.NewAccessToken("user@example.com")
	require.NoError(t, err)
	refresh, err := codec.NewRefreshToken("user@example.com")
	require.NoError(t, err)
	verification, err := codec.NewVerificationToken("user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		expectedScope string
		wantErr       bool
	}{
		{name: "access token as refresh", token: access, expectedScope: service.ScopeRefresh, wantErr: true},
		{name: "refresh token as access", token: refresh, expectedScope: service.ScopeAccess, wantErr: true},
		{name: "scope-less token as access", token: verification, expectedScope: service.ScopeAccess, wantErr: true},
		{name: "scope-less token as refresh", token: verification, expectedScope: service.ScopeRefresh, wantErr: true},
		{name: "verification decode skips scope", token: verification, expectedScope: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token, tt.expectedScope)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenCodec_Invalid(t *testing.T) {
	codec := service.NewTokenCodec(codecConfig())

	expiredCfg := codecConfig()
	expiredCfg.AccessTokenTTL = -time.Minute
	expiredCodec := service.NewTokenCodec(expiredCfg)
	expired, err := expiredCodec.NewAccessToken("user@example.com")
	require.NoError(t, err)

	otherCfg := codecConfig()
	otherCfg.JWTSecret = "a-different-secret"
	otherCodec := service.NewTokenCodec(otherCfg)
	forged, err := otherCodec.NewAccessToken("user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong signature", token: forged},
		{name: "malformed", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token, service.ScopeAccess)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestTokenCodec_VerificationRoundTrip(t *testing.T) {
	codec := service.NewTokenCodec(codecConfig())

	token, err := codec.NewVerificationToken("verify@example.com")
	require.NoError(t, err)

	email, err := codec.DecodeVerification(token)
	require.NoError(t, err)
	assert.Equal(t, "verify@example.com", email)
}
