package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/access"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/notifier"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/carenrueda/api-gestion/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectCreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	CategoryID     uint       `json:"categoryId" binding:"required"`
	StatusID       uint       `json:"statusId" binding:"required"`
	Priority       string     `json:"priority"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	EstimatedHours float64    `json:"estimatedHours"`
	Budget         float64    `json:"budget"`
	Tags           []string   `json:"tags"`
}

type ProjectUpdateRequest struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	CategoryID     *uint      `json:"categoryId"`
	Priority       *string    `json:"priority"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ActualHours    *float64   `json:"actualHours"`
	Budget         *float64   `json:"budget"`
	Tags           []string   `json:"tags"`
}

type MemberRequest struct {
	UserID uint `json:"userId" binding:"required"`
	RoleID uint `json:"roleId" binding:"required"`
}

type StatusChangeRequest struct {
	StatusID uint `json:"statusId" binding:"required"`
}

const msgProjectNotFound = "Project not found or you don't have access to it"

// loadProject fetches a project with everything the access predicates and
// the response shape need. Membership rows come along on every load because
// authorization reads them.
func loadProject(id uint) (models.Project, error) {
	var project models.Project

	err := db.DB.
		Preload("Category").
		Preload("Owner.GlobalRole").
		Preload("Status").
		Preload("Members.User.GlobalRole").
		Preload("Members.Role").
		First(&project, id).Error

	return project, err
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return datatypes.JSON(raw)
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	memberOf := db.DB.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	var projects []models.Project
	if err := db.DB.
		Preload("Category").
		Preload("Owner.GlobalRole").
		Preload("Status").
		Preload("Members.User.GlobalRole").
		Preload("Members.Role").
		Where("is_active = ? AND (owner_id = ? OR id IN (?))", true, userID, memberOf).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		logger.Log.Error("failed to list projects", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch projects"})
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		response = append(response, types.NewProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "projects": response})
}

func CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	var body ProjectCreateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Name, description, categoryId and statusId are required"})
		return
	}

	var category models.Category
	if err := db.DB.Where("id = ? AND is_active = ?", body.CategoryID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Category not found"})
			return
		}
		logger.Log.Error("failed to fetch category", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create project"})
		return
	}

	var status models.State
	if err := db.DB.Where("id = ? AND type = ? AND is_active = ?", body.StatusID, models.StateTypeProject, true).
		First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Status must be an existing project state"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create project"})
		return
	}

	priority := models.PriorityMedium
	if body.Priority != "" {
		if !models.IsValidPriority(body.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Priority must be Low, Medium, High or Critical"})
			return
		}
		priority = body.Priority
	}

	startDate := time.Now()
	if body.StartDate != nil {
		startDate = *body.StartDate
	}

	project := models.Project{
		Name:           body.Name,
		Description:    body.Description,
		CategoryID:     body.CategoryID,
		OwnerID:        userID,
		StatusID:       body.StatusID,
		Priority:       priority,
		StartDate:      startDate,
		EndDate:        body.EndDate,
		EstimatedHours: body.EstimatedHours,
		Budget:         body.Budget,
		Tags:           encodeTags(body.Tags),
		IsActive:       true,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		logger.Log.Error("failed to create project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create project"})
		return
	}

	created, err := loadProject(project.ID)
	if err != nil {
		logger.Log.Error("failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Project created successfully", "project": types.NewProjectResponse(created)})
}

// requireProject loads the project and runs the access check, writing the
// denial response itself. The bool reports whether the caller may proceed.
func requireProject(ctx *gin.Context, op access.Operation) (models.Project, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return models.Project{}, false
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid project ID"})
		return models.Project{}, false
	}

	project, err := loadProject(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": msgProjectNotFound})
			return models.Project{}, false
		}
		logger.Log.Error("failed to fetch project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch project"})
		return models.Project{}, false
	}

	switch access.Decide(op, userID, access.Subject{Project: &project}) {
	case access.Allow:
		return project, true
	case access.Forbidden:
		ctx.JSON(http.StatusForbidden, gin.H{"ok": false, "msg": "You don't have permission to perform this action"})
		return models.Project{}, false
	default:
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": msgProjectNotFound})
		return models.Project{}, false
	}
}

func GetProject(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "project": types.NewProjectResponse(project)})
}

func UpdateProject(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectUpdate)
	if !ok {
		return
	}

	var body ProjectUpdateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid request body"})
		return
	}

	updates := map[string]any{}

	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.CategoryID != nil {
		var category models.Category
		if err := db.DB.Where("id = ? AND is_active = ?", *body.CategoryID, true).First(&category).Error; err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Category not found"})
			return
		}
		updates["category_id"] = *body.CategoryID
	}
	if body.Priority != nil {
		if !models.IsValidPriority(*body.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Priority must be Low, Medium, High or Critical"})
			return
		}
		updates["priority"] = *body.Priority
	}
	if body.StartDate != nil {
		updates["start_date"] = *body.StartDate
	}
	if body.EndDate != nil {
		updates["end_date"] = *body.EndDate
	}
	if body.EstimatedHours != nil {
		updates["estimated_hours"] = *body.EstimatedHours
	}
	if body.ActualHours != nil {
		updates["actual_hours"] = *body.ActualHours
	}
	if body.Budget != nil {
		updates["budget"] = *body.Budget
	}
	if body.Tags != nil {
		updates["tags"] = encodeTags(body.Tags)
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&project).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to update project", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update project"})
			return
		}
	}

	updated, err := loadProject(project.ID)
	if err != nil {
		logger.Log.Error("failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Project updated successfully", "project": types.NewProjectResponse(updated)})
}

func DeleteProject(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectDelete)
	if !ok {
		return
	}

	if err := db.DB.Model(&project).Update("is_active", false).Error; err != nil {
		logger.Log.Error("failed to delete project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Project deleted successfully"})
}

func AddMember(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectManageMembers)
	if !ok {
		return
	}

	var body MemberRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "userId and roleId are required"})
		return
	}

	var user models.User
	if err := db.DB.Where("id = ? AND is_active = ?", body.UserID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "User not found"})
			return
		}
		logger.Log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to add member"})
		return
	}

	var role models.Role
	if err := db.DB.Where("id = ? AND is_active = ?", body.RoleID, true).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Role not found"})
			return
		}
		logger.Log.Error("failed to fetch role", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to add member"})
		return
	}

	if project.HasMember(body.UserID) {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "User is already a member of this project"})
		return
	}

	membership := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    body.UserID,
		RoleID:    body.RoleID,
		JoinedAt:  time.Now(),
	}

	// The unique index on (project_id, user_id) turns a concurrent
	// duplicate add into a constraint error instead of a second row.
	if err := db.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "User is already a member of this project"})
			return
		}
		logger.Log.Error("failed to add member", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to add member"})
		return
	}

	subject, mailBody := notifier.ProjectInvitationEmail(
		project.Name,
		project.Description,
		user.FirstName+" "+user.LastName,
		project.Owner.FirstName+" "+project.Owner.LastName,
	)
	notifier.Enqueue(db.DB, notifier.KindInvitation, []string{user.Email}, subject, mailBody)

	updated, err := loadProject(project.ID)
	if err != nil {
		logger.Log.Error("failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to add member"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Member added successfully", "project": types.NewProjectResponse(updated)})
}

func RemoveMember(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectManageMembers)
	if !ok {
		return
	}

	memberID, err := parseIDParam(ctx, "userId")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid user ID"})
		return
	}

	// Hard delete: a soft-deleted row would keep holding the unique index
	// and block the user from ever being re-added.
	result := db.DB.Unscoped().Where("project_id = ? AND user_id = ?", project.ID, memberID).Delete(&models.ProjectMember{})

	if result.Error != nil {
		logger.Log.Error("failed to remove member", zap.Error(result.Error))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to remove member"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "User is not a member of this project"})
		return
	}

	updated, err := loadProject(project.ID)
	if err != nil {
		logger.Log.Error("failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to remove member"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Member removed successfully", "project": types.NewProjectResponse(updated)})
}

func ChangeProjectStatus(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectChangeStatus)
	if !ok {
		return
	}

	var body StatusChangeRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "statusId is required"})
		return
	}

	var status models.State
	if err := db.DB.Where("id = ? AND type = ? AND is_active = ?", body.StatusID, models.StateTypeProject, true).
		First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Status must be an existing project state"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change project status"})
		return
	}

	if err := db.DB.Model(&project).Update("status_id", body.StatusID).Error; err != nil {
		logger.Log.Error("failed to change project status", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change project status"})
		return
	}

	updated, err := loadProject(project.ID)
	if err != nil {
		logger.Log.Error("failed to reload project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change project status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Project status updated successfully", "project": types.NewProjectResponse(updated)})
}
