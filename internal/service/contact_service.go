package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// birthdayWindowDays is the lookahead of the upcoming-birthdays query,
// inclusive on both ends.
const birthdayWindowDays = 7

type ContactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

type ContactInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Birthday    time.Time
}

// Create enforces the per-owner quota before any write happens.
func (s *ContactService) Create(ctx context.Context, owner *domain.User, input ContactInput) (*domain.Contact, error) {
	count, err := s.contactRepo.CountByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxContactsPerUser {
		return nil, domain.ErrContactLimit
	}

	contact := &domain.Contact{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Birthday:    datatypes.Date(input.Birthday),
		OwnerID:     owner.ID,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *ContactService) List(ctx context.Context, owner *domain.User, skip, limit int) ([]*domain.Contact, error) {
	if limit <= 0 {
		limit = domain.MaxContactsPerUser
	}
	return s.contactRepo.GetByOwner(ctx, owner.ID, skip, limit)
}

// Get is owner-scoped like every other contact read. A contact belonging to
// someone else looks exactly like one that does not exist.
func (s *ContactService) Get(ctx context.Context, owner *domain.User, id uint) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByOwnerAndID(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Update overwrites every field of the contact in one commit. Partial writes
// never land: either the whole new value set is stored or nothing is.
func (s *ContactService) Update(ctx context.Context, owner *domain.User, id uint, input ContactInput) (*domain.Contact, error) {
	contact, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.Email = input.Email
	contact.PhoneNumber = input.PhoneNumber
	contact.Birthday = datatypes.Date(input.Birthday)

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, owner *domain.User, id uint) (*domain.Contact, error) {
	contact, err := s.contactRepo.Delete(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// Search matches the query as a case-sensitive substring of first name, last
// name or email, within the owner's contacts only.
func (s *ContactService) Search(ctx context.Context, owner *domain.User, query string) ([]*domain.Contact, error) {
	return s.contactRepo.SearchByOwner(ctx, owner.ID, query)
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// seven calendar days, comparing month and day only so December windows roll
// over into January.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, owner *domain.User) ([]*domain.Contact, error) {
	today := time.Now()
	return s.contactRepo.BirthdaysInWindow(ctx, owner.ID, today, today.AddDate(0, 0, birthdayWindowDays))
}
