package models

import (
	"time"
)

// User is a dashboard login. The operator account created at startup maps to
// the administrator identity configured for the gateway.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;type:varchar(255)" json:"username"`
	PasswordHash string    `gorm:"not null;type:varchar(255)" json:"-"`
	Address      string    `gorm:"not null;type:varchar(64)" json:"address"` // account identity used for gateway calls
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
