package domain

import "errors"

// Auth errors
var (
	ErrEmailTaken        = errors.New("account already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidToken      = errors.New("could not validate credentials")
	ErrVerification      = errors.New("verification error")
	ErrUserNotFound      = errors.New("user not found")
)

// Contact errors
var (
	ErrContactNotFound = errors.New("contact not found")
	ErrContactLimit    = errors.New("contact limit reached")
)
