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

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func ListComments(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.CommentRead)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := db.DB.
		Preload("Author.GlobalRole").
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		logger.Log.Error("failed to list comments", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch comments"})
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, types.NewCommentResponse(comment))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "comments": response})
}

func CreateComment(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	project, ok := requireProject(ctx, access.CommentCreate)
	if !ok {
		return
	}

	var body CommentRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Content is required"})
		return
	}

	comment := models.Comment{
		Content:   body.Content,
		AuthorID:  user.ID,
		ProjectID: project.ID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		logger.Log.Error("failed to create comment", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create comment"})
		return
	}

	if err := db.DB.Preload("Author.GlobalRole").First(&comment, comment.ID).Error; err != nil {
		logger.Log.Error("failed to reload comment", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to create comment"})
		return
	}

	enqueueCommentEmail(project, user, body.Content)

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "Comment created successfully", "comment": types.NewCommentResponse(comment)})
}

// enqueueCommentEmail notifies the owner and every member except the author.
func enqueueCommentEmail(project models.Project, author types.AuthenticatedUser, content string) {
	recipients := make([]string, 0, len(project.Members)+1)

	if project.Owner.ID != author.ID && project.Owner.Email != "" {
		recipients = append(recipients, project.Owner.Email)
	}

	for _, member := range project.Members {
		if member.UserID == author.ID || member.User.Email == "" {
			continue
		}
		recipients = append(recipients, member.User.Email)
	}

	if len(recipients) == 0 {
		return
	}

	subject, body := notifier.NewCommentEmail(project.Name, author.FirstName+" "+author.LastName, content)
	notifier.Enqueue(db.DB, notifier.KindComment, recipients, subject, body)
}

func requireComment(ctx *gin.Context, op access.Operation) (models.Comment, bool) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return models.Comment{}, false
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Invalid comment ID"})
		return models.Comment{}, false
	}

	var comment models.Comment
	if err := db.DB.Preload("Author.GlobalRole").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "Comment not found"})
			return models.Comment{}, false
		}
		logger.Log.Error("failed to fetch comment", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch comment"})
		return models.Comment{}, false
	}

	project, err := loadProject(comment.ProjectID)
	if err != nil {
		logger.Log.Error("failed to fetch comment project", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to fetch comment"})
		return models.Comment{}, false
	}

	subject := access.Subject{Project: &project, Comment: &comment}
	if access.Decide(op, userID, subject) != access.Allow {
		ctx.JSON(http.StatusForbidden, gin.H{"ok": false, "msg": "You don't have permission to perform this action on this comment"})
		return models.Comment{}, false
	}

	return comment, true
}

func EditComment(ctx *gin.Context) {
	comment, ok := requireComment(ctx, access.CommentEdit)
	if !ok {
		return
	}

	var body CommentRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Content is required"})
		return
	}

	now := time.Now()
	comment.Content = body.Content
	comment.EditedAt = &now

	if err := db.DB.Save(&comment).Error; err != nil {
		logger.Log.Error("failed to edit comment", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to edit comment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Comment updated successfully", "comment": types.NewCommentResponse(comment)})
}

// DeleteComment removes the row outright. Comments are the one resource
// without a soft-delete flag.
func DeleteComment(ctx *gin.Context) {
	comment, ok := requireComment(ctx, access.CommentDelete)
	if !ok {
		return
	}

	if err := db.DB.Unscoped().Delete(&comment).Error; err != nil {
		logger.Log.Error("failed to delete comment", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete comment"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Comment deleted successfully"})
}
