package handlers

import (
	"errors"
	"net/http"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func ListRoles(ctx *gin.Context) {
	var roles []models.Role

	if err := db.DB.Where("is_active = ?", true).Find(&roles).Error; err != nil {
		logger.Log.Error("failed to list roles", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch roles"})
		return
	}

	response := make([]types.RoleResponse, 0, len(roles))
	for _, role := range roles {
		response = append(response, types.NewRoleResponse(role))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "roles": response})
}

func CreateRole(ctx *gin.Context) {
	var body RoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name and description are required"})
		return
	}

	if !models.IsAllowedRoleName(body.Name) {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role name is not in the allowed set"})
		return
	}

	var existing models.Role
	err := db.DB.Where("name = ?", body.Name).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("failed to check existing role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create role"})
		return
	}

	role := models.Role{Name: body.Name, Description: body.Description, IsActive: true}

	if err := db.DB.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role already exists"})
			return
		}
		logger.Log.Error("failed to create role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create role"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Role created successfully", "role": types.NewRoleResponse(role)})
}

func UpdateRole(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid role ID"})
		return
	}

	var body RoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name and description are required"})
		return
	}

	if !models.IsAllowedRoleName(body.Name) {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role name is not in the allowed set"})
		return
	}

	var role models.Role
	if err := db.DB.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Role not found"})
			return
		}
		logger.Log.Error("failed to fetch role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update role"})
		return
	}

	role.Name = body.Name
	role.Description = body.Description

	if err := db.DB.Save(&role).Error; err != nil {
		logger.Log.Error("failed to update role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update role"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Role updated successfully", "role": types.NewRoleResponse(role)})
}

func DeleteRole(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid role ID"})
		return
	}

	result := db.DB.Model(&models.Role{}).Where("id = ?", id).Update("is_active", false)

	if result.Error != nil {
		logger.Log.Error("failed to delete role", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete role"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Role not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Role deleted successfully"})
}
