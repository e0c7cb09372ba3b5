package handlers

import (
	"net/http"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/access"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/storage"
	"github.com/carenrueda/api-gestion/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadsHandler owns file intake and serving. Avatars belong to the
// authenticated user only; project images follow project authorization.
type UploadsHandler struct {
	store *storage.LocalStore
}

func NewUploadsHandler(store *storage.LocalStore) *UploadsHandler {
	return &UploadsHandler{store: store}
}

func (h *UploadsHandler) UploadAvatar(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "An 'avatar' file is required"})
		return
	}

	name, err := h.store.Save(file, storage.ImageExtensions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": err.Error()})
		return
	}

	var current models.User
	if err := db.DB.First(&current, user.ID).Error; err != nil {
		logger.Log.Error("failed to fetch user for avatar update", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to upload avatar"})
		return
	}

	previous := current.Avatar

	if err := db.DB.Model(&current).Update("avatar", name).Error; err != nil {
		logger.Log.Error("failed to update avatar", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to upload avatar"})
		return
	}

	if previous != "" {
		if err := h.store.Remove(previous); err != nil {
			logger.Log.Warn("failed to remove previous avatar", zap.Error(err))
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Avatar uploaded successfully", "avatar": name})
}

func (h *UploadsHandler) DeleteAvatar(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	var current models.User
	if err := db.DB.First(&current, user.ID).Error; err != nil {
		logger.Log.Error("failed to fetch user for avatar delete", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete avatar"})
		return
	}

	if current.Avatar == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "You have no avatar to delete"})
		return
	}

	name := current.Avatar

	if err := db.DB.Model(&current).Update("avatar", "").Error; err != nil {
		logger.Log.Error("failed to clear avatar", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete avatar"})
		return
	}

	if err := h.store.Remove(name); err != nil {
		logger.Log.Warn("failed to remove avatar file", zap.Error(err))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Avatar deleted successfully"})
}

func (h *UploadsHandler) UploadProjectImage(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectUpdate)
	if !ok {
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "An 'image' file is required"})
		return
	}

	name, err := h.store.Save(file, storage.ImageExtensions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": err.Error()})
		return
	}

	previous := project.ImageURL

	if err := db.DB.Model(&project).Update("image_url", name).Error; err != nil {
		logger.Log.Error("failed to update project image", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to upload project image"})
		return
	}

	if previous != "" {
		if err := h.store.Remove(previous); err != nil {
			logger.Log.Warn("failed to remove previous project image", zap.Error(err))
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Project image uploaded successfully", "image_url": name})
}

func (h *UploadsHandler) DeleteProjectImage(ctx *gin.Context) {
	project, ok := requireProject(ctx, access.ProjectUpdate)
	if !ok {
		return
	}

	if project.ImageURL == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "This project has no image"})
		return
	}

	name := project.ImageURL

	if err := db.DB.Model(&project).Update("image_url", "").Error; err != nil {
		logger.Log.Error("failed to clear project image", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to delete project image"})
		return
	}

	if err := h.store.Remove(name); err != nil {
		logger.Log.Warn("failed to remove project image file", zap.Error(err))
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Project image deleted successfully"})
}

// UploadTaskDocuments accepts a multipart batch under the "files" field and
// returns the stored identifiers. Per-file failures fail the whole batch
// so the client never has to guess which half landed.
func (h *UploadsHandler) UploadTaskDocuments(ctx *gin.Context) {
	_, ok := requireTask(ctx, access.TaskUpdate)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A multipart form with 'files' is required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "At least one file is required"})
		return
	}

	stored := make([]string, 0, len(files))
	for _, file := range files {
		name, err := h.store.Save(file, storage.DocumentExtensions)
		if err != nil {
			for _, s := range stored {
				if rmErr := h.store.Remove(s); rmErr != nil {
					logger.Log.Warn("failed to clean up partial upload", zap.Error(rmErr))
				}
			}
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": err.Error()})
			return
		}
		stored = append(stored, name)
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Files uploaded successfully", "files": stored})
}

func (h *UploadsHandler) ServeFile(ctx *gin.Context) {
	name := ctx.Param("name")

	if name == "" || !h.store.Exists(name) {
		ctx.JSON(http.StatusNotFound, gin.H{"ok": false, "msg": "File not found"})
		return
	}

	ctx.File(h.store.Path(name))
}
