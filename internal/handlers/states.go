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

type StateRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Color   string `json:"color"`
	Order   int    `json:"order"`
	IsFinal bool   `json:"isFinal"`
}

type StateUpdateRequest struct {
	Name    *string `json:"name"`
	Color   *string `json:"color"`
	Order   *int    `json:"order"`
	IsFinal *bool   `json:"isFinal"`
}

func listStatesOfType(ctx *gin.Context, stateType string) {
	var states []models.State

	if err := db.DB.Where("type = ? AND is_active = ?", stateType, true).
		Order("\"order\", name").Find(&states).Error; err != nil {
		logger.Log.Error("failed to list states", zap.String("type", stateType), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch states"})
		return
	}

	response := make([]types.StateResponse, 0, len(states))
	for _, state := range states {
		response = append(response, types.NewStateResponse(state))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "states": response})
}

func ListStates(ctx *gin.Context) {
	stateType := ctx.Query("type")

	if stateType != "" {
		if !models.IsValidStateType(stateType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "State type must be 'Project' or 'Task'"})
			return
		}
		listStatesOfType(ctx, stateType)
		return
	}

	var states []models.State

	if err := db.DB.Where("is_active = ?", true).Order("type, \"order\", name").Find(&states).Error; err != nil {
		logger.Log.Error("failed to list states", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch states"})
		return
	}

	response := make([]types.StateResponse, 0, len(states))
	for _, state := range states {
		response = append(response, types.NewStateResponse(state))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "states": response})
}

func ListProjectStates(ctx *gin.Context) {
	listStatesOfType(ctx, models.StateTypeProject)
}

func ListTaskStates(ctx *gin.Context) {
	listStatesOfType(ctx, models.StateTypeTask)
}

func GetState(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid state ID"})
		return
	}

	var state models.State
	if err := db.DB.Where("id = ? AND is_active = ?", id, true).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "State not found"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch state"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "state": types.NewStateResponse(state)})
}

func CreateState(ctx *gin.Context) {
	var body StateRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name and type are required"})
		return
	}

	if !models.IsValidStateType(body.Type) {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "State type must be 'Project' or 'Task'"})
		return
	}

	var existing models.State
	err := db.DB.Where("name = ? AND type = ?", body.Name, body.Type).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A state with that name and type already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("failed to check existing state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create state"})
		return
	}

	state := models.State{
		Name:     body.Name,
		Type:     body.Type,
		Color:    body.Color,
		Order:    body.Order,
		IsFinal:  body.IsFinal,
		IsActive: true,
	}

	if err := db.DB.Create(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A state with that name and type already exists"})
			return
		}
		logger.Log.Error("failed to create state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create state"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "State created successfully", "state": types.NewStateResponse(state)})
}

func UpdateState(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid state ID"})
		return
	}

	var body StateUpdateRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid request body"})
		return
	}

	var state models.State
	if err := db.DB.First(&state, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "State not found"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update state"})
		return
	}

	if body.Name != nil && *body.Name != state.Name {
		var duplicate models.State
		err := db.DB.Where("name = ? AND type = ? AND id != ?", *body.Name, state.Type, id).First(&duplicate).Error
		if err == nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A state with that name and type already exists"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("failed to check duplicate state", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update state"})
			return
		}
		state.Name = *body.Name
	}

	if body.Color != nil {
		state.Color = *body.Color
	}
	if body.Order != nil {
		state.Order = *body.Order
	}
	if body.IsFinal != nil {
		state.IsFinal = *body.IsFinal
	}

	if err := db.DB.Save(&state).Error; err != nil {
		logger.Log.Error("failed to update state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update state"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "State updated successfully", "state": types.NewStateResponse(state)})
}

func DeleteState(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid state ID"})
		return
	}

	result := db.DB.Model(&models.State{}).Where("id = ?", id).Update("is_active", false)

	if result.Error != nil {
		logger.Log.Error("failed to delete state", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete state"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "State not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "State deleted successfully"})
}
