package handlers

import (
	"net/http"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

func Health(ctx *gin.Context) {
	database := "ok"

	if sqlDB, err := db.DB.DB(); err != nil || sqlDB.Ping() != nil {
		database = "unreachable"
	}

	status := http.StatusOK
	if database != "ok" {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{
		"ok":      database == "ok",
		"status":  database,
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
		"checked": time.Now().UTC(),
	})
}
