package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dom/contacts-api/internal/cache"
	"github.com/dom/contacts-api/internal/config"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/notify"
	"github.com/dom/contacts-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	users    cache.UserCache
	codec    *TokenCodec
	notifier notify.VerificationNotifier
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, users cache.UserCache, notifier notify.VerificationNotifier, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		users:    users,
		codec:    NewTokenCodec(cfg),
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *AuthService) Codec() *TokenCodec { return s.codec }

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Signup registers an unconfirmed user and fires the verification email in
// the background. Delivery failures are logged, never surfaced: the account
// exists either way and the email can be re-requested.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		Confirmed:    false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two signups racing past the existence check: the unique index on
		// email catches the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.dispatchVerification(user)

	return user, nil
}

// Login fails with a distinct reason per case: unknown email, unconfirmed
// email, wrong password. Success mints a fresh pair and overwrites the
// refresh-token slot, invalidating whatever token was stored before.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidEmail
		}
		return nil, err
	}

	if !user.Confirmed {
		return nil, domain.ErrEmailNotConfirmed
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidPassword
	}

	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. A presented token
// that decodes but does not match the stored slot is treated as reuse: the
// slot is cleared so the original holder must log in again too.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken, ScopeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.userRepo.SetRefreshToken(ctx, user.ID, nil); err != nil {
			log.Printf("ERROR [AuthService.Refresh] failed to clear refresh slot for user %d: %v", user.ID, err)
		}
		return nil, domain.ErrInvalidToken
	}

	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}

	swapped, err := s.userRepo.SwapRefreshToken(ctx, user.ID, &refreshToken, &pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost a race against a concurrent refresh. Same treatment as reuse.
		if err := s.userRepo.SetRefreshToken(ctx, user.ID, nil); err != nil {
			log.Printf("ERROR [AuthService.Refresh] failed to clear refresh slot for user %d: %v", user.ID, err)
		}
		return nil, domain.ErrInvalidToken
	}

	return pair, nil
}

// CurrentUser resolves the identity behind an access token, serving repeated
// lookups from the cache so hot clients do not hammer the user store.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Decode(accessToken, ScopeAccess)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := cache.GetOrLoad(ctx, s.users, claims.Subject, func(ctx context.Context, email string) (*domain.User, error) {
		u, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrInvalidToken
			}
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ConfirmEmail redeems a verification token. Confirming twice is not an
// error; the second call reports alreadyConfirmed without touching the row.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.codec.DecodeVerification(token)
	if err != nil {
		return false, domain.ErrVerification
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, domain.ErrVerification
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.userRepo.ConfirmEmail(ctx, email); err != nil {
		return false, err
	}

	return false, nil
}

// RequestVerification re-sends the confirmation email. The response is the
// same whether or not the address is registered, so the endpoint cannot be
// used to probe for accounts.
func (s *AuthService) RequestVerification(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	s.dispatchVerification(user)
	return false, nil
}

func (s *AuthService) mintPair(email string) (*TokenPair, error) {
	accessToken, err := s.codec.NewAccessToken(email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.NewRefreshToken(email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) dispatchVerification(user *domain.User) {
	token, err := s.codec.NewVerificationToken(user.Email)
	if err != nil {
		log.Printf("ERROR [AuthService] failed to mint verification token for %s: %v", user.Email, err)
		return
	}

	email, username := user.Email, user.Username
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.notifier.NotifyVerification(ctx, email, username, token); err != nil {
			log.Printf("ERROR [AuthService] verification email to %s failed: %v", email, err)
		}
	}()
}
