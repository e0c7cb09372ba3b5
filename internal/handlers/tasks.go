package handlers

import (
	"errors"
	"net/http"
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
	"gorm.io/gorm"
)

type TaskCreateRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	StatusID       uint       `json:"statusId" binding:"required"`
	AssignedToID   *uint      `json:"assignedTo"`
	Priority       string     `json:"priority"`
	EstimatedHours float64    `json:"estimatedHours"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	Tags           []string   `json:"tags"`
}

type TaskUpdateRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Priority       *string    `json:"priority"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ActualHours    *float64   `json:"actualHours"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	Tags           []string   `json:"tags"`
}

type TaskAssignRequest struct {
	UserID *uint `json:"userId"`
}

func loadTask(id uint) (models.Task, error) {
	var task models.Task

	err := db.DB.
		Preload("Project.Members").
		Preload("Project.Owner.GlobalRole").
		Preload("AssignedTo.GlobalRole").
		Preload("CreatedBy.GlobalRole").
		Preload("Status").
		Where("is_active = ?", true).
		First(&task, id).Error

	return task, err
}

// requireTask loads the task and evaluates the operation. Unlike project
// routes, a denied caller here learns the task exists: denials answer 403.
func requireTask(ctx *gin.Context, op access.Operation) (models.Task, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return models.Task{}, false
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid task ID"})
		return models.Task{}, false
	}

	task, err := loadTask(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Task not found"})
			return models.Task{}, false
		}
		logger.Log.Error("failed to fetch task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch task"})
		return models.Task{}, false
	}

	subject := access.Subject{Project: &task.Project, Task: &task}
	if access.Decide(op, userID, subject) != access.Allow {
		ctx.JSON(http.StatusForbidden, gin.H{"ok": false, "msg": "You don't have permission to perform this action on this task"})
		return models.Task{}, false
	}

	return task, true
}

func ListProjectTasks(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	var tasks []models.Task
	if err := db.DB.
		Preload("AssignedTo.GlobalRole").
		Preload("CreatedBy.GlobalRole").
		Preload("Status").
		Where("project_id = ? AND is_active = ?", project.ID, true).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		logger.Log.Error("failed to list tasks", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch tasks"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, types.NewTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "tasks": response})
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	var body TaskCreateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Title, description and statusId are required"})
		return
	}

	var status models.State
	if err := db.DB.Where("id = ? AND type = ? AND is_active = ?", body.StatusID, models.StateTypeTask, true).
		First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Status must be an existing task state"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create task"})
		return
	}

	if body.AssignedToID != nil {
		if project.OwnerID != *body.AssignedToID && !project.HasMember(*body.AssignedToID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Assigned user must be the project owner or a member"})
			return
		}
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

	task := models.Task{
		Title:          body.Title,
		Description:    body.Description,
		ProjectID:      project.ID,
		AssignedToID:   body.AssignedToID,
		CreatedByID:    userID,
		StatusID:       body.StatusID,
		Priority:       priority,
		EstimatedHours: body.EstimatedHours,
		StartDate:      startDate,
		DueDate:        body.DueDate,
		Tags:           encodeTags(body.Tags),
		IsActive:       true,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		logger.Log.Error("failed to create task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create task"})
		return
	}

	created, err := loadTask(task.ID)
	if err != nil {
		logger.Log.Error("failed to reload task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create task"})
		return
	}

	if created.AssignedTo != nil && created.AssignedTo.ID != userID {
		enqueueAssignmentEmail(created, userID)
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Task created successfully", "task": types.NewTaskResponse(created)})
}

func enqueueAssignmentEmail(task models.Task, assignerID uint) {
	var assigner models.User
	if err := db.DB.First(&assigner, assignerID).Error; err != nil {
		logger.Log.Warn("failed to fetch assigner for notification", zap.Error(err))
		return
	}

	subject, body := notifier.TaskAssignedEmail(
		task.Title,
		task.Description,
		task.Priority,
		task.DueDate,
		task.AssignedTo.FirstName+" "+task.AssignedTo.LastName,
		assigner.FirstName+" "+assigner.LastName,
		task.Project.Name,
	)
	notifier.Enqueue(db.DB, notifier.KindAssignment, []string{task.AssignedTo.Email}, subject, body)
}

func GetTask(ctx *gin.Context) {
	task, ok := requireTask(ctx, access.TaskRead)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "task": types.NewTaskResponse(task)})
}

func UpdateTask(ctx *gin.Context) {
	task, ok := requireTask(ctx, access.TaskUpdate)
	if !ok {
		return
	}

	var body TaskUpdateRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid request body"})
		return
	}

	updates := map[string]any{}

	if body.Title != nil {
		updates["title"] = *body.Title
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Priority != nil {
		if !models.IsValidPriority(*body.Priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Priority must be Low, Medium, High or Critical"})
			return
		}
		updates["priority"] = *body.Priority
	}
	if body.EstimatedHours != nil {
		updates["estimated_hours"] = *body.EstimatedHours
	}
	if body.ActualHours != nil {
		updates["actual_hours"] = *body.ActualHours
	}
	if body.StartDate != nil {
		updates["start_date"] = *body.StartDate
	}
	if body.DueDate != nil {
		updates["due_date"] = *body.DueDate
	}
	if body.Tags != nil {
		updates["tags"] = encodeTags(body.Tags)
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to update task", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update task"})
			return
		}
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		logger.Log.Error("failed to reload task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to update task"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Task updated successfully", "task": types.NewTaskResponse(updated)})
}

func DeleteTask(ctx *gin.Context) {
	task, ok := requireTask(ctx, access.TaskDelete)
	if !ok {
		return
	}

	if err := db.DB.Model(&task).Update("is_active", false).Error; err != nil {
		logger.Log.Error("failed to delete task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete task"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Task deleted successfully"})
}

func ChangeTaskStatus(ctx *gin.Context) {
	task, ok := requireTask(ctx, access.TaskChangeStatus)
	if !ok {
		return
	}

	var body StatusChangeRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "statusId is required"})
		return
	}

	var status models.State
	if err := db.DB.Where("id = ? AND type = ? AND is_active = ?", body.StatusID, models.StateTypeTask, true).
		First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Status must be an existing task state"})
			return
		}
		logger.Log.Error("failed to fetch state", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change task status"})
		return
	}

	// Status and completion timestamp move together: a final state stamps
	// completed_at once, leaving a later re-entry of the same state alone,
	// and any non-final state clears it.
	updates := map[string]any{"status_id": body.StatusID}
	if status.IsFinal {
		if task.CompletedAt == nil {
			now := time.Now()
			updates["completed_at"] = &now
		}
	} else {
		updates["completed_at"] = nil
	}

	if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
		logger.Log.Error("failed to change task status", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change task status"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		logger.Log.Error("failed to reload task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to change task status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Task status updated successfully", "task": types.NewTaskResponse(updated)})
}

func AssignTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	task, ok := requireTask(ctx, access.TaskAssign)
	if !ok {
		return
	}

	var body TaskAssignRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid request body"})
		return
	}

	if body.UserID != nil {
		if task.Project.OwnerID != *body.UserID && !task.Project.HasMember(*body.UserID) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Assigned user must be the project owner or a member"})
			return
		}
	}

	// Update through a bare model: saving the preloaded task would write the
	// loaded association FK back and silently undo an unassignment.
	if err := db.DB.Model(&models.Task{}).Where("id = ?", task.ID).Update("assigned_to_id", body.UserID).Error; err != nil {
		logger.Log.Error("failed to assign task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to assign task"})
		return
	}

	updated, err := loadTask(task.ID)
	if err != nil {
		logger.Log.Error("failed to reload task", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to assign task"})
		return
	}

	if updated.AssignedTo != nil && updated.AssignedTo.ID != userID {
		enqueueAssignmentEmail(updated, userID)
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Task assignment updated successfully", "task": types.NewTaskResponse(updated)})
}

func MyTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	var tasks []models.Task
	if err := db.DB.
		Preload("AssignedTo.GlobalRole").
		Preload("CreatedBy.GlobalRole").
		Preload("Status").
		Joins("JOIN projects ON projects.id = tasks.project_id AND projects.is_active = ?", true).
		Where("tasks.assigned_to_id = ? AND tasks.is_active = ?", userID, true).
		Order("tasks.due_date ASC NULLS LAST, tasks.created_at DESC").
		Find(&tasks).Error; err != nil {
		logger.Log.Error("failed to list assigned tasks", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch tasks"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, types.NewTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "tasks": response})
}
