package service

import (
	"errors"
	"time"

	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token scopes. A token minted for one purpose cannot be presented as
// another: Decode rejects both a missing and a mismatched scope claim.
// Email-verification tokens are the exception and carry no scope at all.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

type TokenClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec mints and validates the three token kinds, HS256-signed with a
// shared secret.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

func NewTokenCodec(cfg *config.Config) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		verifyTTL:  cfg.VerifyTokenTTL,
	}
}

func (c *TokenCodec) NewAccessToken(email string) (string, error) {
	return c.encode(email, ScopeAccess, c.accessTTL)
}

func (c *TokenCodec) NewRefreshToken(email string) (string, error) {
	return c.encode(email, ScopeRefresh, c.refreshTTL)
}

func (c *TokenCodec) NewVerificationToken(email string) (string, error) {
	return c.encode(email, "", c.verifyTTL)
}

func (c *TokenCodec) encode(email, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: email,
			// jti keeps two tokens minted in the same second distinct, which
			// refresh rotation depends on.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode validates signature and expiry, then checks the scope claim when
// expectedScope is non-empty. Every failure collapses into ErrInvalidToken so
// callers leak nothing about why a token was rejected.
func (c *TokenCodec) Decode(tokenString, expectedScope string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if expectedScope != "" && claims.Scope != expectedScope {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// DecodeVerification extracts the subject email of an email-verification
// token. No scope check, matching how these tokens are minted.
func (c *TokenCodec) DecodeVerification(tokenString string) (string, error) {
	claims, err := c.Decode(tokenString, "")
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
