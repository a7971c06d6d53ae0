package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/utils"
)

// AdminRequired checks the authenticated user's admin flag against the
// database. It must run after AuthRequired. The flag is read fresh per
// request so a revoked admin loses access without waiting for token expiry.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := CurrentUserID(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "authentication required")
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.Select("id", "is_admin").First(&user, userID).Error; err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40107, "account not found")
			ctx.Abort()
			return
		}
		if !user.IsAdmin {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
