package models

import "time"

// UploadedFile tracks a cover image stored on local disk so the background
// cleaner can delete it after its TTL.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FilePath  string    `gorm:"size:512" json:"file_path"`
	URL       string    `gorm:"size:512" json:"url"`
	ExpireAt  time.Time `gorm:"index" json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
}
