package notifier

import (
	"strings"

	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	KindWelcome    = "welcome"
	KindInvitation = "invitation"
	KindAssignment = "assignment"
	KindComment    = "comment"
)

// Enqueue writes an outbox row for later delivery. It never returns an
// error to the caller: a notification that cannot even be queued is logged
// and dropped, the domain write it follows has already committed.
func Enqueue(db *gorm.DB, kind string, recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}

	notification := models.Notification{
		Kind:       kind,
		Recipients: strings.Join(recipients, ","),
		Subject:    subject,
		Body:       body,
		Status:     models.NotificationPending,
	}

	if err := db.Create(&notification).Error; err != nil {
		logger.Log.Warn("failed to enqueue notification",
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}
