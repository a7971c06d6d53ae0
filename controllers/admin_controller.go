package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/services"
	"github.com/kathashu/kathashu/utils"
)

// AdminController exposes the moderation surface: user listing, permission
// grants, story oversight, and legacy imports. All routes behind it require
// the admin flag.
type AdminController struct {
	db    *gorm.DB
	users *services.UserCache
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB, users *services.UserCache) *AdminController {
	return &AdminController{db: db, users: users}
}

// ListUsers returns paginated users with their permission flags.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := a.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to count users")
		return
	}

	var users []models.User
	if err := a.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		m := userResponse(u)
		items = append(items, m)
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// GrantAdmin promotes a user to admin. Admins always hold the posting
// permission, so both flags are set together.
func (a *AdminController) GrantAdmin(ctx *gin.Context) {
	user, ok := a.loadUserParam(ctx)
	if !ok {
		return
	}

	if err := a.db.Model(user).Updates(map[string]interface{}{
		"is_admin": true,
		"can_post": true,
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to grant admin")
		return
	}
	user.IsAdmin = true
	user.CanPost = true

	a.users.Invalidate(user.ID)
	utils.Success(ctx, gin.H{"message": "admin granted", "user": userResponse(*user)})
}

// SetPosting toggles a user's posting permission. Revoking it from an admin
// has no practical effect since admins can always post.
func (a *AdminController) SetPosting(ctx *gin.Context) {
	var req struct {
		CanPost *bool `json:"can_post" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	user, ok := a.loadUserParam(ctx)
	if !ok {
		return
	}

	if err := a.db.Model(user).Update("can_post", *req.CanPost).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to update posting permission")
		return
	}
	user.CanPost = *req.CanPost

	utils.Success(ctx, gin.H{"message": "posting permission updated", "user": userResponse(*user)})
}

// ListStories returns all stories regardless of status for moderation.
func (a *AdminController) ListStories(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := ctx.Query("status")

	q := a.db.Model(&models.Story{}).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to count stories")
		return
	}

	var stories []models.Story
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&stories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to list stories")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      stories,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ImportStories ingests legacy story exports. Each raw object passes through
// the alias normalizer before insert; bad records are reported, not fatal.
func (a *AdminController) ImportStories(ctx *gin.Context) {
	var req struct {
		AuthorID uint             `json:"author_id" binding:"required"`
		Stories  []map[string]any `json:"stories" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid request payload")
		return
	}

	var author models.User
	if err := a.db.First(&author, req.AuthorID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "import author not found")
		return
	}

	imported := 0
	var failed []int
	for i, raw := range req.Stories {
		story := services.NormalizeLegacyStory(raw, author.ID)
		if story.Title == "" || story.Content == "" {
			failed = append(failed, i)
			continue
		}
		if err := a.db.Create(&story).Error; err != nil {
			utils.Sugar.Warnw("legacy import failed", "index", i, "err", err)
			failed = append(failed, i)
			continue
		}
		imported++
	}

	invalidateStoryCaches(author.ID)
	utils.Success(ctx, gin.H{
		"imported": imported,
		"failed":   failed,
		"total":    len(req.Stories),
	})
}

func (a *AdminController) loadUserParam(ctx *gin.Context) (*models.User, bool) {
	idStr := ctx.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid user id")
		return nil, false
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "user not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to load user")
		return nil, false
	}
	return &user, true
}
