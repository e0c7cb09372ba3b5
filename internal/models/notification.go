package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is an outbox row: domain handlers insert it in the request
// path and the dispatcher delivers it later. Delivery failure is recorded
// here and never surfaces to the request that enqueued it.
type Notification struct {
	gorm.Model

	Kind       string `gorm:"not null;index"` // invitation, assignment, comment, welcome
	Recipients string `gorm:"not null"`       // comma-separated email addresses
	Subject    string `gorm:"not null"`
	Body       string `gorm:"not null"`
	Status     string `gorm:"not null;default:pending;index"`
	Error      string
	SentAt     *time.Time
}
