package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	GeminiAPIKey string
	UploadDir    string
}

// Load reads configuration from environment variables with sane defaults.
// Mail and AI settings are optional; the subsystems they feed report
// themselves unavailable when unset.
func Load() (Config, error) {
	cfg := Config{
		Port:         strings.TrimSpace(os.Getenv("PORT")),
		DatabaseDSN:  strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     parsePort(os.Getenv("SMTP_PORT")),
		SMTPUser:     strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass:     strings.TrimSpace(os.Getenv("SMTP_PASS")),
		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		UploadDir:    strings.TrimSpace(os.Getenv("UPLOAD_DIR")),
	}

	if cfg.Port == "" {
		cfg.Port = "4000"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	if cfg.DatabaseDSN == "" {
		return cfg, fmt.Errorf("DATABASE_DSN is required")
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func parsePort(raw string) int {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 {
		return 587
	}
	return port
}
