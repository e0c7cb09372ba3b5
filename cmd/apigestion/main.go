package main

import (
	"log"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/ai"
	"github.com/carenrueda/api-gestion/internal/auth"
	"github.com/carenrueda/api-gestion/internal/config"
	"github.com/carenrueda/api-gestion/internal/handlers"
	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/notifier"
	"github.com/carenrueda/api-gestion/internal/router"
	"github.com/carenrueda/api-gestion/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal("invalid configuration", zap.Error(err))
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := db.SeedStates(); err != nil {
		logger.Log.Fatal("failed to seed states", zap.Error(err))
	}

	if err := db.SeedRoles(); err != nil {
		logger.Log.Fatal("failed to seed roles", zap.Error(err))
	}

	if err := auth.Init(cfg.JWTSecret); err != nil {
		logger.Log.Fatal("failed to initialize token signing", zap.Error(err))
	}

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Log.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	mailer := notifier.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	dispatcher := notifier.NewDispatcher(db.DB, mailer, 5*time.Second)
	if cfg.MailConfigured() {
		dispatcher.Start()
		defer dispatcher.Stop()
	} else {
		logger.Log.Warn("mail is not configured, notifications will stay queued")
	}

	aiClient := ai.NewClient(cfg.GeminiAPIKey)
	if !aiClient.Enabled() {
		logger.Log.Warn("GEMINI_API_KEY not set, assistant endpoints disabled")
	}

	r := router.NewRouter(router.Handlers{
		AI:      handlers.NewAIHandler(aiClient),
		Uploads: handlers.NewUploadsHandler(store),
		Email:   handlers.NewEmailHandler(mailer),
	})

	logger.Log.Info("starting server", zap.String("port", cfg.Port))

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("failed to start server", zap.Error(err))
	}
}
