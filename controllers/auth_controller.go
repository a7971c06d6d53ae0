package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kathashu/kathashu/middleware"
	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/services"
	"github.com/kathashu/kathashu/utils"
)

const tokenLifetime = 72 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// AuthController handles registration, login, and account management.
type AuthController struct {
	db    *gorm.DB
	users *services.UserCache
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, users *services.UserCache) *AuthController {
	return &AuthController{db: db, users: users}
}

// Register creates an account. The user row and its username reservation are
// written in one transaction so a duplicate name can never leave a half
// created account behind.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		FullName string `json:"full_name" binding:"required,max=120"`
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !usernamePattern.MatchString(username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 3-20 characters: lowercase letters, digits, underscore")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return services.ReserveUsername(tx, username, user.ID)
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already taken")
			return
		}
		// The unique index on email backs up the pre-check under concurrency.
		if services.IsDuplicateKey(err) {
			utils.Error(ctx, http.StatusConflict, 40902, "email already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login verifies email and password and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, userResponse(user))
}

// UpdateProfile lets the authenticated user change their full name or
// username. A username change swaps the registry reservation atomically and
// drops the cached name.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	oldUsername := user.Username
	if name := strings.TrimSpace(req.FullName); name != "" {
		if len([]rune(name)) > 120 {
			utils.Error(ctx, http.StatusBadRequest, 40031, "full name too long")
			return
		}
		user.FullName = name
	}

	newUsername := strings.ToLower(strings.TrimSpace(req.Username))
	renaming := newUsername != "" && newUsername != oldUsername
	if renaming && !usernamePattern.MatchString(newUsername) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 3-20 characters: lowercase letters, digits, underscore")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if renaming {
			if err := services.RenameUsername(tx, oldUsername, newUsername, user.ID); err != nil {
				return err
			}
			user.Username = newUsername
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}

	a.users.Invalidate(user.ID)
	utils.InvalidateByPrefix("cache:user:public:" + strconv.Itoa(int(user.ID)))
	utils.InvalidateByPrefix("cache:user:public:uname:" + oldUsername)

	utils.Success(ctx, userResponse(user))
}

// CheckUsername reports whether a username is still available. Used by
// signup forms for inline validation.
func (a *AuthController) CheckUsername(ctx *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(ctx.Query("username")))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "missing username")
		return
	}
	if !usernamePattern.MatchString(username) {
		utils.Success(ctx, gin.H{"username": username, "available": false, "reason": "invalid format"})
		return
	}
	taken, err := services.UsernameTaken(a.db, username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to check username")
		return
	}
	utils.Success(ctx, gin.H{"username": username, "available": !taken})
}

// DeleteAccount removes the authenticated user after password reconfirmation.
// The username reservation is released in the same transaction and the row is
// purged outright so the freed email and username can register again. Stories
// and comments stay behind and render with a placeholder author.
func (a *AuthController) DeleteAccount(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "password confirmation failed")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := services.ReleaseUsername(tx, user.Username); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to delete account")
		return
	}

	a.users.Invalidate(user.ID)
	utils.InvalidateByPrefix("cache:user:public:" + strconv.Itoa(int(user.ID)))
	utils.InvalidateByPrefix("cache:user:public:uname:" + user.Username)

	utils.Success(ctx, gin.H{"message": "account deleted"})
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := publicUserResponse(user)
	utils.CacheSetJSON("cache:user:public:"+idStr, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetUserPublicByUsername returns public user info by username.
func (a *AuthController) GetUserPublicByUsername(ctx *gin.Context) {
	uname := strings.ToLower(strings.TrimSpace(ctx.Param("username")))
	if uname == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "missing username")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:uname:" + uname); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.Where("username = ?", uname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return
	}
	payload := publicUserResponse(user)
	utils.CacheSetJSON("cache:user:public:uname:"+uname, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

func publicUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"full_name":  user.FullName,
		"created_at": user.CreatedAt,
	}
}

// userResponse includes permission flags for authenticated responses.
func userResponse(user models.User) gin.H {
	m := publicUserResponse(user)
	m["email"] = user.Email
	m["is_admin"] = user.IsAdmin
	m["can_post"] = user.CanPost
	return m
}
