package models

import "time"

// UsernameEntry maps a lowercased username to its owner. The table is the
// authority for uniqueness checks and for public author-name lookups; the
// primary key makes a reservation an atomic check-and-set.
type UsernameEntry struct {
	Username  string    `gorm:"primaryKey;size:64" json:"username"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the registry under a single-word table name.
func (UsernameEntry) TableName() string {
	return "usernames"
}
