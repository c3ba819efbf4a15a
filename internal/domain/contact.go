package domain

import (
	"gorm.io/datatypes"
)

// MaxContactsPerUser is the creation-time quota. Existing rows above the
// limit are never pruned retroactively.
const MaxContactsPerUser = 10

type Contact struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FirstName   string         `json:"firstName" gorm:"index;not null"`
	LastName    string         `json:"lastName" gorm:"index;not null"`
	Email       string         `json:"email" gorm:"index;not null"`
	PhoneNumber string         `json:"phoneNumber" gorm:"not null"`
	Birthday    datatypes.Date `json:"birthday" gorm:"not null"`
	OwnerID     uint           `json:"ownerId" gorm:"index;not null"`
	Owner       *User          `json:"-" gorm:"foreignKey:OwnerID"`
}
