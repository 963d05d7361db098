package models

import "time"

// User represents an account in the system.
type User struct {
	ID           string `gorm:"size:36;primaryKey"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	DisplayName  string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
