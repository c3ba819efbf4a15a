package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/contacts-api/internal/domain"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *contactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepository) GetByOwnerAndID(ctx context.Context, ownerID, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).First(&contact, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) GetByOwner(ctx context.Context, ownerID uint, skip, limit int) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepository) Delete(ctx context.Context, ownerID, id uint) (*domain.Contact, error) {
	contact, err := r.GetByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *contactRepository) SearchByOwner(ctx context.Context, ownerID uint, query string) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern).
		Order("id").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// BirthdaysInWindow matches on the month/day portion only, so a window that
// crosses Dec 31 (e.g. Dec 28 - Jan 4) still picks up January birthdays.
func (r *contactRepository) BirthdaysInWindow(ctx context.Context, ownerID uint, from, to time.Time) ([]*domain.Contact, error) {
	var contacts []*domain.Contact

	fromKey := monthDayKey(from)
	toKey := monthDayKey(to)

	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if fromKey <= toKey {
		tx = tx.Where("to_char(birthday, 'MMDD') BETWEEN ? AND ?", fromKey, toKey)
	} else {
		tx = tx.Where("to_char(birthday, 'MMDD') >= ? OR to_char(birthday, 'MMDD') <= ?", fromKey, toKey)
	}

	err := tx.Order("id").Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func monthDayKey(t time.Time) string {
	return fmt.Sprintf("%02d%02d", int(t.Month()), t.Day())
}
