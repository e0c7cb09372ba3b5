package handlers

import (
	"net/http"

	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/notifier"
	"github.com/carenrueda/api-gestion/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmailHandler exposes an admin-only delivery check. Unlike the outbox,
// the send here is synchronous: the point of the endpoint is to learn
// whether SMTP works, so the failure is the answer.
type EmailHandler struct {
	mailer notifier.Mailer
}

func NewEmailHandler(mailer notifier.Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

type TestEmailRequest struct {
	To string `json:"to" binding:"required,email"`
}

func (h *EmailHandler) SendTestEmail(ctx *gin.Context) {
	if h.mailer == nil || !h.mailer.Configured() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "msg": "Email delivery is not configured on this server"})
		return
	}

	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"ok": false, "msg": "Unauthorized"})
		return
	}

	var body TestEmailRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "msg": "A valid 'to' address is required"})
		return
	}

	subject, mailBody := notifier.TestEmail(user.FirstName + " " + user.LastName)

	if err := h.mailer.Send([]string{body.To}, subject, mailBody); err != nil {
		logger.Log.Error("test email delivery failed", zap.String("to", body.To), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "msg": "Failed to send test email", "error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Test email sent successfully"})
}
