package repository

import (
	"context"
	"time"

	"github.com/dom/contacts-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// SwapRefreshToken replaces the stored refresh token only when the slot
	// still holds old. Returns false when another writer got there first.
	SwapRefreshToken(ctx context.Context, userID uint, old *string, next *string) (bool, error)
	SetRefreshToken(ctx context.Context, userID uint, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	SetAvatar(ctx context.Context, userID uint, url *string) error
}

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByOwnerAndID(ctx context.Context, ownerID, id uint) (*domain.Contact, error)
	GetByOwner(ctx context.Context, ownerID uint, skip, limit int) ([]*domain.Contact, error)
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, ownerID, id uint) (*domain.Contact, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
	SearchByOwner(ctx context.Context, ownerID uint, query string) ([]*domain.Contact, error)
	// BirthdaysInWindow returns the owner's contacts whose birthday month/day
	// falls within [from, to], year ignored. The window may cross Dec 31.
	BirthdaysInWindow(ctx context.Context, ownerID uint, from, to time.Time) ([]*domain.Contact, error)
}

type Repositories struct {
	User    UserRepository
	Contact ContactRepository
}
