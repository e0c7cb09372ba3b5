package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/carenrueda/api-gestion/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}

type ChangeRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

// ListUsers is admin-only.
func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Preload("GlobalRole").Where("is_active = ?", true).Find(&users).Error; err != nil {
		logger.Log.Error("failed to list users", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch users"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, types.NewUserResponse(user))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "users": response})
}

func GetProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Preload("GlobalRole").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Error("failed to fetch profile", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "user": types.NewUserResponse(user)})
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "User not authenticated"})
		return
	}

	var body UpdateProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if body.FirstName != "" {
		updates["first_name"] = strings.TrimSpace(body.FirstName)
	}
	if body.LastName != "" {
		updates["last_name"] = strings.TrimSpace(body.LastName)
	}
	if body.Phone != "" {
		updates["phone"] = strings.TrimSpace(body.Phone)
	}
	if body.Avatar != "" {
		updates["avatar"] = strings.TrimSpace(body.Avatar)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).Updates(updates).Error; err != nil {
		logger.Log.Error("failed to update profile", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update profile"})
		return
	}

	var user models.User
	if err := db.DB.Preload("GlobalRole").First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Error("failed to reload profile", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Profile updated successfully", "user": types.NewUserResponse(user)})
}

// DeleteUser soft-deletes another account. Admins cannot delete themselves.
func DeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "User not authenticated"})
		return
	}

	targetID, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid user ID"})
		return
	}

	if targetID == currentUser.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "You cannot delete your own account"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "User not found"})
			return
		}
		logger.Log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete user"})
		return
	}

	if err := db.DB.Model(&user).Update("is_active", false).Error; err != nil {
		logger.Log.Error("failed to deactivate user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete user"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "User deleted successfully"})
}

// ChangeRole reassigns another user's global role. Admins cannot change
// their own role.
func ChangeRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "User not authenticated"})
		return
	}

	targetID, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid user ID"})
		return
	}

	var body ChangeRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role ID is required"})
		return
	}

	var role models.Role
	if err := db.DB.First(&role, body.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "The specified role does not exist"})
			return
		}
		logger.Log.Error("failed to fetch role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change role"})
		return
	}

	if targetID == currentUser.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "You cannot change your own role"})
		return
	}

	result := db.DB.Model(&models.User{}).Where("id = ?", targetID).Update("global_role_id", role.ID)

	if result.Error != nil {
		logger.Log.Error("failed to change role", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change role"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "User not found"})
		return
	}

	var user models.User
	if err := db.DB.Preload("GlobalRole").First(&user, targetID).Error; err != nil {
		logger.Log.Error("failed to reload user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change role"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Role updated successfully", "user": types.NewUserResponse(user)})
}
