package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func ListCategories(ctx *gin.Context) {
	var categories []models.Category

	if err := db.DB.Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
		logger.Log.Error("failed to list categories", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch categories"})
		return
	}

	response := make([]types.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, types.NewCategoryResponse(category))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "categories": response})
}

func CreateCategory(ctx *gin.Context) {
	var body CategoryRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name and description are required"})
		return
	}

	var existing models.Category
	err := db.DB.Where("name = ?", body.Name).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A category with that name already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("failed to check existing category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create category"})
		return
	}

	category := models.Category{Name: body.Name, Description: body.Description, IsActive: true}

	if err := db.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A category with that name already exists"})
			return
		}
		logger.Log.Error("failed to create category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create category"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Category created successfully", "category": types.NewCategoryResponse(category)})
}

func GetCategory(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := db.DB.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Category not found"})
			return
		}
		logger.Log.Error("failed to fetch category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch category"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "category": types.NewCategoryResponse(category)})
}

func UpdateCategory(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid category ID"})
		return
	}

	var body CategoryRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name and description are required"})
		return
	}

	var duplicate models.Category
	err = db.DB.Where("name = ? AND id != ?", body.Name, id).First(&duplicate).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A category with that name already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("failed to check duplicate category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update category"})
		return
	}

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Category not found"})
			return
		}
		logger.Log.Error("failed to fetch category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update category"})
		return
	}

	category.Name = body.Name
	category.Description = body.Description

	if err := db.DB.Save(&category).Error; err != nil {
		logger.Log.Error("failed to update category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update category"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Category updated successfully", "category": types.NewCategoryResponse(category)})
}

// DeleteCategory soft-deletes a category, but only when no active project
// still references it.
func DeleteCategory(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid category ID"})
		return
	}

	var referencing int64
	if err := db.DB.Model(&models.Project{}).
		Where("category_id = ? AND is_active = ?", id, true).
		Count(&referencing).Error; err != nil {
		logger.Log.Error("failed to count category references", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete category"})
		return
	}

	if referencing > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"ok":  false,
			"msg": fmt.Sprintf("Cannot delete category because it has %d associated project(s)", referencing),
		})
		return
	}

	result := db.DB.Model(&models.Category{}).Where("id = ?", id).Update("is_active", false)

	if result.Error != nil {
		logger.Log.Error("failed to delete category", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete category"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Category not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Category deleted successfully"})
}
