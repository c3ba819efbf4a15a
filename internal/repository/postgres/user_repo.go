package postgres

import (
	"context"

	"github.com/dom/contacts-api/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SwapRefreshToken performs a conditional update so two refresh calls racing
// on the same stored token cannot both succeed.
func (r *userRepository) SwapRefreshToken(ctx context.Context, userID uint, old *string, next *string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID)
	if old == nil {
		tx = tx.Where("refresh_token IS NULL")
	} else {
		tx = tx.Where("refresh_token = ?", *old)
	}
	res := tx.Update("refresh_token", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, userID uint, token *string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

func (r *userRepository) ConfirmEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetAvatar(ctx context.Context, userID uint, url *string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("avatar", url).Error
}
