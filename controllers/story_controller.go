package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kathashu/kathashu/config"
	"github.com/kathashu/kathashu/middleware"
	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/services"
	"github.com/kathashu/kathashu/utils"
)

// StoryController manages story CRUD, homepage feeds, and like toggles.
type StoryController struct {
	db    *gorm.DB
	users *services.UserCache
}

// NewStoryController creates a new StoryController instance.
func NewStoryController(db *gorm.DB, users *services.UserCache) *StoryController {
	return &StoryController{db: db, users: users}
}

type storyRequest struct {
	Title    string   `json:"title" binding:"required,min=1"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
	CoverURL string   `json:"cover_url"`
}

// normalize trims and validates. Fields are stored as the plain text the
// author typed; escaping happens at render time, not at write time.
func (r *storyRequest) normalize() (title, summary, content, status string, tags []string, err error) {
	title = strings.TrimSpace(r.Title)
	if title == "" {
		return "", "", "", "", nil, errors.New("title cannot be empty")
	}
	summary = strings.TrimSpace(r.Summary)
	content = r.Content

	status = r.Status
	if status == "" {
		status = models.StoryStatusDraft
	}
	if status != models.StoryStatusDraft && status != models.StoryStatusPublished {
		return "", "", "", "", nil, errors.New("status must be draft or published")
	}

	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return title, summary, content, status, tags, nil
}

// CreateStory creates a story for users holding the posting permission.
func (s *StoryController) CreateStory(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "account not found")
		return
	}
	if !user.CanPublish() {
		utils.Error(ctx, http.StatusForbidden, 40310, "posting permission required")
		return
	}

	var req storyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	title, summary, content, status, tags, err := req.normalize()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, err.Error())
		return
	}

	story := models.Story{
		AuthorID: userID,
		Title:    title,
		Summary:  summary,
		Content:  content,
		Tags:     tags,
		Status:   status,
		CoverURL: strings.TrimSpace(req.CoverURL),
	}

	if err := s.db.Create(&story).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create story")
		return
	}

	invalidateStoryCaches(story.AuthorID)
	utils.Success(ctx, gin.H{"story": story})
}

// GetStory returns a single story. Published stories bump the view counter
// with an atomic in-place update; a failed bump never fails the read. Drafts
// are visible only to their author or an admin.
func (s *StoryController) GetStory(ctx *gin.Context) {
	storyID := ctx.Param("id")

	var story models.Story
	if err := s.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load story")
		return
	}

	viewerID, _ := middleware.CurrentUserID(ctx)
	if !story.VisibleTo(viewerID, s.viewerIsAdmin(ctx)) {
		// hide draft existence from non-authors
		utils.Error(ctx, http.StatusNotFound, 40402, "story not found")
		return
	}

	if story.Published() {
		// best effort: a lost view count is not worth a failed page
		if err := s.db.Model(&models.Story{}).Where("id = ?", story.ID).
			UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err == nil {
			story.Views++
		}
	}

	liked := false
	if viewerID != 0 {
		var count int64
		s.db.Model(&models.StoryLike{}).Where("user_id = ? AND story_id = ?", viewerID, story.ID).Count(&count)
		liked = count > 0
	}

	utils.Success(ctx, gin.H{
		"story":        story,
		"author_name":  s.users.ResolveUsername(story.AuthorID),
		// display-only, so the cached flag is fine here
		"author_is_admin": s.users.IsAdmin(story.AuthorID),
		"content_html":    utils.Sanitize(utils.RenderStoryHTML(story.Content)),
		"liked":           liked,
	})
}

// UpdateStory allows the author or an admin to edit a story.
func (s *StoryController) UpdateStory(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	storyID := ctx.Param("id")
	var story models.Story
	if err := s.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load story")
		return
	}

	if story.AuthorID != userID && !s.viewerIsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only update your own stories")
		return
	}

	var req storyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	title, summary, content, status, tags, err := req.normalize()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, err.Error())
		return
	}

	story.Title = title
	story.Summary = summary
	story.Content = content
	story.Tags = tags
	story.Status = status
	story.CoverURL = strings.TrimSpace(req.CoverURL)
	if err := s.db.Save(&story).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update story")
		return
	}

	invalidateStoryCaches(story.AuthorID)
	utils.Success(ctx, gin.H{"story": story})
}

// DeleteStory removes a story. Only admins may delete; authors retire their
// work by flipping it back to draft instead.
func (s *StoryController) DeleteStory(ctx *gin.Context) {
	if !s.viewerIsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40303, "admin privileges required")
		return
	}

	storyID := ctx.Param("id")
	var story models.Story
	if err := s.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load story")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.StoryLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&story).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete story")
		return
	}

	invalidateStoryCaches(story.AuthorID)
	utils.Success(ctx, gin.H{"message": "story deleted"})
}

// FeaturedStories returns the most liked published stories for the homepage.
// Ties break on recency.
func (s *StoryController) FeaturedStories(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:stories:featured"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var stories []models.Story
	err := s.db.Where("status = ?", models.StoryStatusPublished).
		Order("likes DESC").Order("created_at DESC").
		Limit(config.Get().FeaturedStoryCount).
		Find(&stories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list featured stories")
		return
	}

	payload := s.feedPayload(stories)
	utils.CacheSetJSON("cache:stories:featured", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// LatestStories returns the newest published stories for the homepage.
func (s *StoryController) LatestStories(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:stories:latest"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var stories []models.Story
	err := s.db.Where("status = ?", models.StoryStatusPublished).
		Order("created_at DESC").
		Limit(config.Get().LatestStoryCount).
		Find(&stories).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list latest stories")
		return
	}

	payload := s.feedPayload(stories)
	utils.CacheSetJSON("cache:stories:latest", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// ListUserStories returns a user's published stories (public).
func (s *StoryController) ListUserStories(ctx *gin.Context) {
	userID := strings.TrimSpace(ctx.Param("id"))
	if userID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40060, "missing user id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:user:%s:stories:page=%d:size=%d", userID, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	q := s.db.Where("author_id = ? AND status = ?", userID, models.StoryStatusPublished).Order("created_at DESC")
	var total int64
	if err := q.Model(&models.Story{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count user stories")
		return
	}
	var stories []models.Story
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&stories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list user stories")
		return
	}

	payload := gin.H{
		"items":      s.feedItems(stories),
		"pagination": paginationPayload(page, pageSize, total),
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListMyStories returns the authenticated user's stories, drafts included.
func (s *StoryController) ListMyStories(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	q := s.db.Where("author_id = ?", userID).Order("created_at DESC")
	var total int64
	if err := q.Model(&models.Story{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count stories")
		return
	}
	var stories []models.Story
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&stories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to list stories")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      stories,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ToggleStoryLike flips the caller's like on a story. Presence check, marker
// row, and counter move inside one transaction so the counter can not drift
// from the marker under concurrent toggles.
func (s *StoryController) ToggleStoryLike(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	storyID := ctx.Param("id")
	var story models.Story
	if err := s.db.First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "story not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load story")
		return
	}

	var next services.LikeState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Story
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").First(&current, story.ID).Error; err != nil {
			return err
		}

		state := services.LikeState{Count: current.Likes}
		var existing models.StoryLike
		err := tx.Where("user_id = ? AND story_id = ?", userID, story.ID).First(&existing).Error
		switch {
		case err == nil:
			state.Liked = true
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.StoryLike{UserID: userID, StoryID: story.ID}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		next = state.Toggle()
		return tx.Model(&models.Story{}).Where("id = ?", story.ID).
			UpdateColumn("likes", next.Count).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to toggle like")
		return
	}

	invalidateStoryCaches(story.AuthorID)
	utils.Success(ctx, gin.H{"liked": next.Liked, "likes": next.Count})
}

// UploadCover saves a cover image and returns its public URL. Filenames are
// random so uploads can not clobber each other or leak original names.
func (s *StoryController) UploadCover(ctx *gin.Context) {
	if _, ok := middleware.CurrentUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40034, "unsupported image type")
		return
	}

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40035, "file size exceeds 10MB")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to create upload directory")
		return
	}

	safeName := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to write file")
		return
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s", now.Format("2006"), now.Format("01"), safeName)

	conf := config.Get()
	ttlMinutes := conf.UploadsSelfDestructMinutes
	expireAt := now.Add(time.Duration(ttlMinutes) * time.Minute)
	absPath, _ := filepath.Abs(dstPath)
	// record for the background cleaner; upload success does not depend on it
	go func(absPath, url string, exp time.Time) {
		defer func() { _ = recover() }()
		if db := config.DB(); db != nil {
			_ = db.Create(&models.UploadedFile{FilePath: absPath, URL: url, ExpireAt: exp}).Error
		}
	}(absPath, relURL, expireAt)

	utils.Success(ctx, gin.H{"url": relURL})
}

func (s *StoryController) feedItems(stories []models.Story) []gin.H {
	ids := make([]uint, 0, len(stories))
	for _, st := range stories {
		ids = append(ids, st.AuthorID)
	}
	names := s.users.ResolveUsernames(ids)

	items := make([]gin.H, 0, len(stories))
	for _, st := range stories {
		items = append(items, gin.H{
			"id":          st.ID,
			"title":       st.Title,
			"summary":     st.Summary,
			"tags":        st.Tags,
			"cover_url":   st.CoverURL,
			"likes":       st.Likes,
			"views":       st.Views,
			"author_id":   st.AuthorID,
			"author_name": names[st.AuthorID],
			"created_at":  st.CreatedAt,
		})
	}
	return items
}

func (s *StoryController) feedPayload(stories []models.Story) gin.H {
	return gin.H{"items": s.feedItems(stories)}
}

// viewerIsAdmin gates update and delete, so it reads the flag fresh rather
// than through the lookup cache. A revoked admin loses access immediately.
func (s *StoryController) viewerIsAdmin(ctx *gin.Context) bool {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return false
	}
	var user models.User
	if err := s.db.Select("id", "is_admin").First(&user, userID).Error; err != nil {
		return false
	}
	return user.IsAdmin
}

func invalidateStoryCaches(authorID uint) {
	utils.InvalidateByPrefix("cache:stories:")
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(authorID)) + ":stories:")
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
