package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/dom/contacts-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username  string
	email     string
	password  string
	confirmed bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username:  fmt.Sprintf("testuser_%s", suffix),
		email:     fmt.Sprintf("test_%s@example.com", suffix),
		password:  "testpassword123",
		confirmed: true,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unconfirmed leaves the email-verified flag off
func (b *UserBuilder) Unconfirmed() *UserBuilder {
	b.confirmed = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		Confirmed:    b.confirmed,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// ContactBuilder creates test contacts with a builder pattern
type ContactBuilder struct {
	firstName   string
	lastName    string
	email       string
	phoneNumber string
	birthday    time.Time
	ownerID     uint
}

// NewContactBuilder creates a new ContactBuilder with default values
func NewContactBuilder(ownerID uint) *ContactBuilder {
	suffix := uuid.New().String()[:8]
	return &ContactBuilder{
		firstName:   fmt.Sprintf("First_%s", suffix),
		lastName:    fmt.Sprintf("Last_%s", suffix),
		email:       fmt.Sprintf("contact_%s@example.com", suffix),
		phoneNumber: "1234567890",
		birthday:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		ownerID:     ownerID,
	}
}

// WithName sets first and last name
func (b *ContactBuilder) WithName(first, last string) *ContactBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// WithEmail sets the contact email
func (b *ContactBuilder) WithEmail(email string) *ContactBuilder {
	b.email = email
	return b
}

// WithBirthday sets the birthday
func (b *ContactBuilder) WithBirthday(birthday time.Time) *ContactBuilder {
	b.birthday = birthday
	return b
}

// Build creates the contact in the database
func (b *ContactBuilder) Build(t *testing.T, db *gorm.DB) *domain.Contact {
	t.Helper()

	contact := &domain.Contact{
		FirstName:   b.firstName,
		LastName:    b.lastName,
		Email:       b.email,
		PhoneNumber: b.phoneNumber,
		Birthday:    datatypes.Date(b.birthday),
		OwnerID:     b.ownerID,
	}

	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}

	return contact
}
