package model

import "time"

// DefaultCategoryName is created for every new user at signup.
const DefaultCategoryName = "None"

// Category groups a user's tasks. Names are not unique per user.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:CategoryID"`
}
