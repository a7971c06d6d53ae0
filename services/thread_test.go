package services

import (
	"testing"
	"time"

	"github.com/kathashu/kathashu/models"
)

func mkComment(id uint, parent *uint, created time.Time) models.Comment {
	return models.Comment{ID: id, StoryID: 1, AuthorID: 1, ParentID: parent, CreatedAt: created}
}

func pid(v uint) *uint { return &v }

func TestAssembleThreadsOrdering(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(1, nil, base),
		mkComment(2, nil, base.Add(2*time.Hour)),
		mkComment(3, pid(1), base.Add(3*time.Hour)),
		mkComment(4, pid(1), base.Add(1*time.Hour)),
	}

	threads := AssembleThreads(comments)
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	// newest top-level first
	if threads[0].ID != 2 || threads[1].ID != 1 {
		t.Fatalf("top-level order = [%d %d], want [2 1]", threads[0].ID, threads[1].ID)
	}
	// replies oldest first
	replies := threads[1].Replies
	if len(replies) != 2 || replies[0].ID != 4 || replies[1].ID != 3 {
		t.Fatalf("reply order wrong: %+v", replies)
	}
}

func TestAssembleThreadsPromotesDeepReplies(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(1, nil, base),
		mkComment(2, pid(1), base.Add(time.Hour)),
		mkComment(3, pid(2), base.Add(2*time.Hour)), // reply to a reply
	}

	threads := AssembleThreads(comments)
	if len(threads) != 2 {
		t.Fatalf("expected deep reply promoted to top-level, got %d threads", len(threads))
	}
	promoted := threads[0]
	if promoted.ID != 3 {
		t.Fatalf("expected comment 3 promoted first, got %d", promoted.ID)
	}
	if promoted.ParentID != nil {
		t.Fatalf("promoted comment should have parent reference dropped")
	}
}

func TestAssembleThreadsPromotesOrphans(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(5, pid(99), base), // parent was deleted
	}

	threads := AssembleThreads(comments)
	if len(threads) != 1 {
		t.Fatalf("expected orphan promoted, got %d threads", len(threads))
	}
	if threads[0].ParentID != nil {
		t.Fatalf("orphan should have parent reference dropped")
	}
}

func TestAssembleThreadsNeverNestsBeyondOneLevel(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// chain of 6 comments each replying to the previous
	var comments []models.Comment
	comments = append(comments, mkComment(1, nil, base))
	for i := uint(2); i <= 6; i++ {
		comments = append(comments, mkComment(i, pid(i-1), base.Add(time.Duration(i)*time.Minute)))
	}

	threads := AssembleThreads(comments)
	total := 0
	for _, th := range threads {
		total++
		total += len(th.Replies)
		for _, r := range th.Replies {
			if r.ParentID == nil || *r.ParentID != th.ID {
				t.Fatalf("reply %d not attached to its thread %d", r.ID, th.ID)
			}
		}
	}
	if total != len(comments) {
		t.Fatalf("comments lost while threading: got %d of %d", total, len(comments))
	}
}

func TestAssembleThreadsEmptyInput(t *testing.T) {
	threads := AssembleThreads(nil)
	if len(threads) != 0 {
		t.Fatalf("expected no threads, got %d", len(threads))
	}
}
