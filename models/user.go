package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Passwords are stored as bcrypt hashes
// only. Account deletion purges the row, so the unique email index never has
// to coexist with tombstoned duplicates.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:120" json:"full_name"`
	Username     string    `gorm:"size:64;not null;index" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CanPost      bool      `gorm:"default:false" json:"can_post"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Stories      []Story   `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// CanPublish reports whether the user may create or edit stories.
// Admins always can, regardless of the per-user posting flag.
func (u *User) CanPublish() bool {
	return u.IsAdmin || u.CanPost
}

// PlaceholderName returns the display name used when a user record no longer
// exists (deleted accounts keep their stories and comments).
func PlaceholderName(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
