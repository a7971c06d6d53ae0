package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kathashu/kathashu/config"
	"github.com/kathashu/kathashu/controllers"
	"github.com/kathashu/kathashu/middleware"
	"github.com/kathashu/kathashu/services"
	"github.com/kathashu/kathashu/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// file-based zap logger instead of gin's console default
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userCache := services.NewUserCache(db)
	authController := controllers.NewAuthController(db, userCache)
	storyController := controllers.NewStoryController(db, userCache)
	commentController := controllers.NewCommentController(db, userCache)
	adminController := controllers.NewAdminController(db, userCache)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/check-username", authController.CheckUsername)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.DELETE("/account", middleware.AuthRequired(), authController.DeleteAccount)

	// public story surface
	api.GET("/stories/featured", storyController.FeaturedStories)
	api.GET("/stories/latest", storyController.LatestStories)
	api.GET("/stories/:id", middleware.OptionalAuth(), storyController.GetStory)
	api.GET("/stories/:id/comments", middleware.OptionalAuth(), commentController.ListComments)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/users/:id/stories", storyController.ListUserStories)
	api.GET("/user/by-username/:username", authController.GetUserPublicByUsername)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/stories", storyController.CreateStory)
	protected.PUT("/stories/:id", storyController.UpdateStory)
	protected.DELETE("/stories/:id", storyController.DeleteStory)
	protected.POST("/stories/:id/like", storyController.ToggleStoryLike)
	protected.POST("/stories/:id/comments", commentController.CreateComment)
	protected.PUT("/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/comments/:commentId", commentController.DeleteComment)
	protected.POST("/comments/:commentId/like", commentController.ToggleCommentLike)
	protected.GET("/users/me/stories", storyController.ListMyStories)
	protected.POST("/upload", storyController.UploadCover)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(db))
	admin.GET("/users", adminController.ListUsers)
	admin.POST("/users/:id/grant-admin", adminController.GrantAdmin)
	admin.PATCH("/users/:id/posting", adminController.SetPosting)
	admin.GET("/stories", adminController.ListStories)
	admin.POST("/stories/import", adminController.ImportStories)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
