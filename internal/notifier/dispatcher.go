package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/carenrueda/api-gestion/internal/logger"
	"github.com/carenrueda/api-gestion/internal/metrics"
	"github.com/carenrueda/api-gestion/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dispatcher drains pending outbox rows in the background and hands them
// to the mailer. Delivery problems are visible only in logs, metrics and
// the row's status column.
type Dispatcher struct {
	db       *gorm.DB
	mailer   Mailer
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewDispatcher(db *gorm.DB, mailer Mailer, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		db:       db,
		mailer:   mailer,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	logger.Log.Info("starting notification dispatcher")

	go func() {
		defer close(d.done)

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-d.ctx.Done():
				return
			case <-ticker.C:
				d.DrainOnce()
			}
		}
	}()
}

// Stop cancels the loop and waits for the current drain to finish.
func (d *Dispatcher) Stop() {
	d.cancel()
	<-d.done
	logger.Log.Info("notification dispatcher stopped")
}

// DrainOnce delivers every pending notification, oldest first.
func (d *Dispatcher) DrainOnce() {
	var pending []models.Notification

	if err := d.db.Where("status = ?", models.NotificationPending).
		Order("id").
		Limit(50).
		Find(&pending).Error; err != nil {
		logger.Log.Error("failed to load pending notifications", zap.Error(err))
		return
	}

	for i := range pending {
		d.deliver(&pending[i])
	}
}

func (d *Dispatcher) deliver(n *models.Notification) {
	recipients := strings.Split(n.Recipients, ",")

	err := d.mailer.Send(recipients, n.Subject, n.Body)

	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues(n.Kind, "failed").Inc()
		logger.Log.Warn("notification delivery failed",
			zap.Uint("notification_id", n.ID),
			zap.String("kind", n.Kind),
			zap.Error(err),
		)

		updates := map[string]interface{}{
			"status": models.NotificationFailed,
			"error":  err.Error(),
		}
		if err := d.db.Model(n).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to mark notification failed", zap.Error(err))
		}
		return
	}

	metrics.NotificationsDispatched.WithLabelValues(n.Kind, "sent").Inc()

	now := time.Now()
	updates := map[string]interface{}{
		"status":  models.NotificationSent,
		"sent_at": &now,
	}
	if err := d.db.Model(n).Updates(updates).Error; err != nil {
		logger.Log.Error("failed to mark notification sent", zap.Error(err))
	}
}
