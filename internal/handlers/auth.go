package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/auth"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/notifier"
	"github.com/carenrueda/api-gestion/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "All fields are required"})
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var existing models.User
	err := db.DB.Where("email = ?", body.Email).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Email is already registered"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Error("failed to check existing user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
		return
	}

	// Self-registration defaults to Viewer; the seeder guarantees it exists,
	// but recover by reseeding in case the catalog was wiped.
	var viewer models.Role
	if err := db.DB.Where("name = ? AND is_active = ?", models.RoleViewer, true).First(&viewer).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("failed to load default role", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
			return
		}

		if err := db.SeedRoles(); err != nil {
			logger.Log.Error("failed to seed roles", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
			return
		}

		if err := db.DB.Where("name = ? AND is_active = ?", models.RoleViewer, true).First(&viewer).Error; err != nil {
			logger.Log.Error("default role missing after seeding", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
			return
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		logger.Log.Error("failed to hash password", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
		return
	}

	user := models.User{
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		PasswordHash: string(passwordHash),
		GlobalRoleID: viewer.ID,
		IsActive:     true,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		// The existence check above races with concurrent registrations;
		// the unique index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Email is already registered"})
			return
		}
		logger.Log.Error("failed to create user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to register user"})
		return
	}

	subject, html := notifier.WelcomeEmail(user.FirstName, user.LastName, user.Email, viewer.Name)
	notifier.Enqueue(db.DB, notifier.KindWelcome, []string{user.Email}, subject, html)

	ctx.JSON(http.StatusCreated, gin.H{"ok": true, "msg": "User registered successfully"})
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Email and password are required"})
		return
	}

	var user models.User
	err := db.DB.Preload("GlobalRole").
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(body.Email)), true).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "User not found or inactive"})
			return
		}
		logger.Log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to sign in"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Incorrect password"})
		return
	}

	now := time.Now()
	if err := db.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		logger.Log.Warn("failed to record last login", zap.Error(err))
	}

	token, err := auth.GenerateJWT(user.ID)

	if err != nil {
		logger.Log.Error("failed to generate token", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to sign in"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"user":  types.NewUserResponse(user),
		"token": token,
	})
}

func Refresh(ctx *gin.Context) {
	var body RefreshRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "Token is required"})
		return
	}

	userID, err := auth.VerifyJWT(body.Token)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Invalid or expired token"})
		return
	}

	token, err := auth.GenerateJWT(userID)

	if err != nil {
		logger.Log.Error("failed to generate token", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to refresh token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

func Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Session closed successfully"})
}
