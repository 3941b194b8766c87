package model

import "time"

// User is an account that owns categories and tasks.
//
// At most one user has ActiveSession set at any time; SessionID identifies
// the session token that was issued for that login and SessionExpiresAt is
// when that token stops being accepted.
type User struct {
	ID               uint   `gorm:"primaryKey"`
	Username         string `gorm:"uniqueIndex;not null"`
	PasswordDigest   string `gorm:"not null"`
	ActiveSession    bool   `gorm:"default:false;index"`
	SessionID        string
	SessionExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
