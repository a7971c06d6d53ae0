package services

import (
	"sort"

	"github.com/kathashu/kathashu/models"
)

// CommentThread is a top-level comment with its direct replies.
type CommentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

// AssembleThreads arranges a flat comment list into one-level threads.
// A comment counts as a reply only when its parent exists and is itself
// top-level; replies to replies and orphans whose parent is gone are promoted
// to top-level with the dangling parent reference dropped. Top-level threads
// come back newest first, replies within a thread oldest first.
func AssembleThreads(comments []models.Comment) []CommentThread {
	byID := make(map[uint]*models.Comment, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}

	var tops []models.Comment
	replies := make(map[uint][]models.Comment)
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent.ParentID == nil {
				replies[parent.ID] = append(replies[parent.ID], c)
				continue
			}
			// deep or dangling reference: promote and flatten
			c.ParentID = nil
		}
		tops = append(tops, c)
	}

	sort.SliceStable(tops, func(i, j int) bool {
		return tops[i].CreatedAt.After(tops[j].CreatedAt)
	})

	out := make([]CommentThread, 0, len(tops))
	for _, top := range tops {
		kids := replies[top.ID]
		if kids == nil {
			kids = []models.Comment{}
		}
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].CreatedAt.Before(kids[j].CreatedAt)
		})
		out = append(out, CommentThread{Comment: top, Replies: kids})
	}
	return out
}
