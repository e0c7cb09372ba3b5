package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/access"
	"github.com/carenrueda/api-gestion/internal/ai"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/carenrueda/api-gestion/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIHandler serves the assistant endpoints. The client is injected so tests
// can point it at a stub server and so a missing API key is an explicit,
// inspectable state rather than a global.
type AIHandler struct {
	client *ai.Client
}

func NewAIHandler(client *ai.Client) *AIHandler {
	return &AIHandler{client: client}
}

func (h *AIHandler) requireEnabled(ctx *gin.Context) bool {
	if h.client == nil || !h.client.Enabled() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "msg": "AI assistance is not configured on this server"})
		return false
	}
	return true
}

type generatedTask struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// GenerateTasks asks the model for a task breakdown of the project and
// persists the result under the lowest-ordered task state.
func (h *AIHandler) GenerateTasks(ctx *gin.Context) {
	if !h.requireEnabled(ctx) {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following project into between 5 and 10 concrete tasks.
Project name: %s
Project description: %s
Priority: %s

Respond with ONLY a JSON array, no prose, where each element has the shape:
{"title": string, "description": string, "priority": "Low"|"Medium"|"High"|"Critical", "estimatedHours": number}`,
		project.Name, project.Description, project.Priority)

	raw, err := h.client.Complete(ctx.Request.Context(), prompt)
	if err != nil {
		logger.Log.Error("task generation failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to generate tasks"})
		return
	}

	extracted, err := ai.ExtractJSON(raw)
	if err != nil {
		logger.Log.Error("task generation returned unparseable payload", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "The assistant returned an unreadable response, please try again"})
		return
	}

	var generated []generatedTask
	if err := json.Unmarshal([]byte(extracted), &generated); err != nil {
		logger.Log.Error("task generation returned unparseable payload", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "The assistant returned an unreadable response, please try again"})
		return
	}

	if len(generated) == 0 {
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "The assistant returned no tasks, please try again"})
		return
	}

	if len(generated) > 10 {
		generated = generated[:10]
	}

	var initialState models.State
	if err := db.DB.Where("type = ? AND is_active = ?", models.StateTypeTask, true).
		Order("\"order\"").First(&initialState).Error; err != nil {
		logger.Log.Error("no task state available for generated tasks", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to generate tasks"})
		return
	}

	created := make([]types.TaskResponse, 0, len(generated))
	for _, g := range generated {
		if strings.TrimSpace(g.Title) == "" {
			continue
		}

		priority := g.Priority
		if !models.IsValidPriority(priority) {
			priority = models.PriorityMedium
		}

		task := models.Task{
			Title:          g.Title,
			Description:    g.Description,
			ProjectID:      project.ID,
			CreatedByID:    userID,
			StatusID:       initialState.ID,
			Priority:       priority,
			EstimatedHours: g.EstimatedHours,
			StartDate:      time.Now(),
			Tags:           encodeTags(nil),
			IsActive:       true,
		}

		if err := db.DB.Create(&task).Error; err != nil {
			logger.Log.Error("failed to persist generated task", zap.Error(err))
			continue
		}

		loaded, err := loadTask(task.ID)
		if err != nil {
			continue
		}
		created = append(created, types.NewTaskResponse(loaded))
	}

	if len(created) == 0 {
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to generate tasks"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Tasks generated successfully", "tasks": created})
}

func (h *AIHandler) completeJSON(ctx *gin.Context, prompt, failureMsg string) (json.RawMessage, bool) {
	raw, err := h.client.Complete(ctx.Request.Context(), prompt)
	if err != nil {
		logger.Log.Error("assistant call failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": failureMsg})
		return nil, false
	}

	extracted, err := ai.ExtractJSON(raw)
	if err != nil || !json.Valid([]byte(extracted)) {
		logger.Log.Error("assistant returned unparseable payload", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "The assistant returned an unreadable response, please try again"})
		return nil, false
	}

	return json.RawMessage(extracted), true
}

func describeTasks(tasks []models.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "- %s (%s, %s, estimated %.1fh, actual %.1fh, due %s)\n",
			t.Title, t.Status.Name, t.Priority, t.EstimatedHours, t.ActualHours, due)
	}
	if b.Len() == 0 {
		return "(no tasks yet)\n"
	}
	return b.String()
}

func projectTasks(projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := db.DB.Preload("Status").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Find(&tasks).Error
	return tasks, err
}

func (h *AIHandler) AnalyzeProject(ctx *gin.Context) {
	if !h.requireEnabled(ctx) {
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	tasks, err := projectTasks(project.ID)
	if err != nil {
		logger.Log.Error("failed to load tasks for analysis", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to analyze project"})
		return
	}

	prompt := fmt.Sprintf(`You are a project management analyst. Analyze this project and its tasks.
Project: %s
Description: %s
Priority: %s
Status: %s
Budget: %.2f
Estimated hours: %.2f, actual hours: %.2f
Tasks:
%s
Respond with ONLY a JSON object: {"health": "good"|"at_risk"|"critical", "summary": string, "risks": [string], "recommendations": [string]}`,
		project.Name, project.Description, project.Priority, project.Status.Name,
		project.Budget, project.EstimatedHours, project.ActualHours, describeTasks(tasks))

	analysis, ok := h.completeJSON(ctx, prompt, "Failed to analyze project")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "analysis": analysis})
}

func (h *AIHandler) EstimateTime(ctx *gin.Context) {
	if !h.requireEnabled(ctx) {
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	tasks, err := projectTasks(project.ID)
	if err != nil {
		logger.Log.Error("failed to load tasks for estimation", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to estimate time"})
		return
	}

	prompt := fmt.Sprintf(`You are an estimation assistant. Given this project and its tasks, estimate the remaining effort.
Project: %s
Description: %s
Tasks:
%s
Respond with ONLY a JSON object: {"totalEstimatedHours": number, "remainingHours": number, "confidence": "low"|"medium"|"high", "breakdown": [{"task": string, "hours": number}], "notes": string}`,
		project.Name, project.Description, describeTasks(tasks))

	estimate, ok := h.completeJSON(ctx, prompt, "Failed to estimate time")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "estimate": estimate})
}

func (h *AIHandler) GenerateSummary(ctx *gin.Context) {
	if !h.requireEnabled(ctx) {
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	days := 7
	if raw := ctx.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "days must be a number between 1 and 365"})
			return
		}
		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)

	var tasks []models.Task
	if err := db.DB.Preload("Status").
		Where("project_id = ? AND is_active = ? AND updated_at >= ?", project.ID, true, since).
		Find(&tasks).Error; err != nil {
		logger.Log.Error("failed to load tasks for summary", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to generate summary"})
		return
	}

	prompt := fmt.Sprintf(`You are a reporting assistant. Write a progress summary for the last %d days of this project.
Project: %s
Description: %s
Recently updated tasks:
%s
Respond with ONLY a JSON object: {"period": string, "summary": string, "highlights": [string], "blockers": [string]}`,
		days, project.Name, project.Description, describeTasks(tasks))

	summary, ok := h.completeJSON(ctx, prompt, "Failed to generate summary")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary})
}

func (h *AIHandler) SuggestImprovements(ctx *gin.Context) {
	if !h.requireEnabled(ctx) {
		return
	}

	project, ok := requireProject(ctx, access.ProjectRead)
	if !ok {
		return
	}

	tasks, err := projectTasks(project.ID)
	if err != nil {
		logger.Log.Error("failed to load tasks for suggestions", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to suggest improvements"})
		return
	}

	prompt := fmt.Sprintf(`You are a delivery coach. Suggest concrete improvements for how this project is being run.
Project: %s
Description: %s
Priority: %s
Tasks:
%s
Respond with ONLY a JSON object: {"suggestions": [{"area": string, "suggestion": string, "impact": "low"|"medium"|"high"}]}`,
		project.Name, project.Description, project.Priority, describeTasks(tasks))

	suggestions, ok := h.completeJSON(ctx, prompt, "Failed to suggest improvements")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "suggestions": suggestions})
}
