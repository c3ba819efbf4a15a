package domain

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;not null"`
	Email        string    `json:"email" gorm:"size:250;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	Avatar       *string   `json:"avatar" gorm:"size:255"`
	RefreshToken *string   `json:"-" gorm:"size:512"`
	Confirmed    bool      `json:"confirmed" gorm:"not null;default:false"`
}
