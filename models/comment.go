package models

import "time"

// Comment is a reply to a story. ParentID, when set, should point at a
// top-level comment; deeper chains are flattened at read time by the
// thread assembler rather than rejected at write time.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"index;not null" json:"story_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Mentions  []string  `gorm:"serializer:json;type:text" json:"mentions"`
	Likes     int       `gorm:"default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TopLevel reports whether the comment starts a thread.
func (c *Comment) TopLevel() bool {
	return c.ParentID == nil
}
