package middleware

import (
	"net/http"
	"strings"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/auth"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/gin-gonic/gin"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Authorization header format must be Bearer {token}"})
			return
		}

		userID, err := auth.VerifyJWT(parts[1])

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Invalid or expired token"})
			return
		}

		var user models.User

		if err := db.DB.Preload("GlobalRole").Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Invalid token - user does not exist or is inactive"})
			return
		}

		ctx.Set(types.ContextUserKey, types.AuthenticatedUser{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			RoleName:  user.GlobalRole.Name,
		})
		ctx.Next()
	}
}

// RequireAdmin gates admin-only routes. Unlike project-level denials this
// returns 403: the route itself is no secret, the caller just lacks rights.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "User not authenticated"})
			return
		}

		user, ok := value.(types.AuthenticatedUser)

		if !ok || !user.IsAdmin() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "msg": "Access denied. Administrator permissions required."})
			return
		}

		ctx.Next()
	}
}
