package models

import (
	"time"

	"gorm.io/gorm"
)

// Story status values.
const (
	StoryStatusDraft     = "draft"
	StoryStatusPublished = "published"
)

// Story is a piece published on the site. Content is plain text using the
// light heading/paragraph convention rendered by utils.RenderStoryHTML.
type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Summary   string    `gorm:"size:1024" json:"summary"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Tags      []string  `gorm:"serializer:json;type:text" json:"tags"`
	Status    string    `gorm:"size:16;default:'draft';index" json:"status"`
	CoverURL  string    `gorm:"size:512" json:"cover_url"`
	Likes     int       `gorm:"default:0" json:"likes"`
	Views     int       `gorm:"default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Published reports whether the story belongs in public feeds.
func (s *Story) Published() bool {
	return s.Status == StoryStatusPublished
}

// VisibleTo reports whether the viewer may see this story and anything hanging
// off it, such as its comment thread. Drafts are visible only to their author
// and to admins.
func (s *Story) VisibleTo(viewerID uint, viewerIsAdmin bool) bool {
	return s.Published() || s.AuthorID == viewerID || viewerIsAdmin
}

// BeforeCreate defaults the status for records created without one.
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = StoryStatusDraft
	}
	return nil
}
