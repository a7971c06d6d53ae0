package models

import "time"

// StoryLike records that a user liked a story. The unique index doubles as
// the presence set the toggle operation reads.
type StoryLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_story_like;not null" json:"user_id"`
	StoryID   uint      `gorm:"uniqueIndex:idx_story_like;not null" json:"story_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike records that a user liked a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_comment_like;not null" json:"user_id"`
	CommentID uint      `gorm:"uniqueIndex:idx_comment_like;not null" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
