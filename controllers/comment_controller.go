package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kathashu/kathashu/middleware"
	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/services"
	"github.com/kathashu/kathashu/utils"
)

// CommentController manages story comments, their likes, and @mentions.
type CommentController struct {
	db    *gorm.DB
	users *services.UserCache
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, users *services.UserCache) *CommentController {
	return &CommentController{db: db, users: users}
}

// CreateComment adds a comment to a published story. Threading is one level
// deep: replying to a reply lands the new comment at top level. Mentions are
// extracted from the text and kept only when they resolve to real usernames.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	// stored as typed; consumers escape at display time
	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	storyID := ctx.Param("id")
	var story models.Story
	if err := c.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load story")
		return
	}
	if !story.Published() {
		utils.Error(ctx, http.StatusNotFound, 40406, "story not found")
		return
	}

	parentID := req.ParentID
	if parentID != nil {
		var parent models.Comment
		if err := c.db.First(&parent, *parentID).Error; err != nil || parent.StoryID != story.ID {
			utils.Error(ctx, http.StatusBadRequest, 40026, "parent comment not found")
			return
		}
		if parent.ParentID != nil {
			// reply to a reply becomes a top-level comment
			parentID = nil
		}
	}

	mentions, err := services.FilterRegisteredMentions(c.db, services.ExtractMentions(content))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to resolve mentions")
		return
	}

	comment := models.Comment{
		StoryID:  story.ID,
		AuthorID: userID,
		ParentID: parentID,
		Content:  content,
		Mentions: mentions,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to create comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": c.commentPayload(comment)})
}

// ListComments returns a story's comments arranged into one-level threads,
// newest thread first, each with resolved author names.
func (c *CommentController) ListComments(ctx *gin.Context) {
	storyID := ctx.Param("id")
	var story models.Story
	if err := c.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load story")
		return
	}

	// A story reverted to draft takes its thread with it.
	viewerID, _ := middleware.CurrentUserID(ctx)
	if !story.VisibleTo(viewerID, c.viewerIsAdmin(ctx)) {
		utils.Error(ctx, http.StatusNotFound, 40406, "story not found")
		return
	}

	var comments []models.Comment
	if err := c.db.Where("story_id = ?", story.ID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to list comments")
		return
	}

	threads := services.AssembleThreads(comments)

	ids := make([]uint, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.AuthorID)
	}
	names := c.users.ResolveUsernames(ids)

	items := make([]gin.H, 0, len(threads))
	for _, th := range threads {
		replies := make([]gin.H, 0, len(th.Replies))
		for _, r := range th.Replies {
			replies = append(replies, commentWithAuthor(r, names[r.AuthorID]))
		}
		item := commentWithAuthor(th.Comment, names[th.AuthorID])
		item["replies"] = replies
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(comments)})
}

// UpdateComment lets the author edit their comment. Mentions are re-extracted
// from the new text.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	cid := ctx.Param("commentId")
	var comment models.Comment
	if err := c.db.First(&comment, cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load comment")
		return
	}

	if comment.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only edit your own comment")
		return
	}

	mentions, err := services.FilterRegisteredMentions(c.db, services.ExtractMentions(content))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to resolve mentions")
		return
	}

	comment.Content = content
	comment.Mentions = mentions
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to update comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": c.commentPayload(comment)})
}

// DeleteComment lets the author remove their comment. Replies stay and are
// promoted to top level when the thread is next assembled.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	cid := strings.TrimSpace(ctx.Param("commentId"))
	if cid == "" {
		utils.Error(ctx, http.StatusBadRequest, 40070, "missing comment id")
		return
	}
	var comment models.Comment
	if err := c.db.First(&comment, cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to load comment")
		return
	}

	if comment.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only delete your own comment")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// ToggleCommentLike flips the caller's like on a comment, marker and counter
// moving in one transaction.
func (c *CommentController) ToggleCommentLike(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cid := ctx.Param("commentId")
	var comment models.Comment
	if err := c.db.First(&comment, cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to load comment")
		return
	}

	var next services.LikeState
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var current models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").First(&current, comment.ID).Error; err != nil {
			return err
		}

		state := services.LikeState{Count: current.Likes}
		var existing models.CommentLike
		err := tx.Where("user_id = ? AND comment_id = ?", userID, comment.ID).First(&existing).Error
		switch {
		case err == nil:
			state.Liked = true
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.CommentLike{UserID: userID, CommentID: comment.ID}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		next = state.Toggle()
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("likes", next.Count).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to toggle like")
		return
	}

	utils.Success(ctx, gin.H{"liked": next.Liked, "likes": next.Count})
}

// viewerIsAdmin reads the flag fresh for the same reason the story handlers
// do: visibility is an enforcement decision, not a display one.
func (c *CommentController) viewerIsAdmin(ctx *gin.Context) bool {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return false
	}
	var user models.User
	if err := c.db.Select("id", "is_admin").First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsAdmin
}

func (c *CommentController) commentPayload(comment models.Comment) gin.H {
	return commentWithAuthor(comment, c.users.ResolveUsername(comment.AuthorID))
}

func commentWithAuthor(comment models.Comment, authorName string) gin.H {
	return gin.H{
		"id":          comment.ID,
		"story_id":    comment.StoryID,
		"author_id":   comment.AuthorID,
		"author_name": authorName,
		"parent_id":   comment.ParentID,
		"content":     comment.Content,
		"mentions":    comment.Mentions,
		"likes":       comment.Likes,
		"created_at":  comment.CreatedAt,
		"updated_at":  comment.UpdatedAt,
	}
}
