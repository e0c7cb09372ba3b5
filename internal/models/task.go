package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	Title          string  `gorm:"not null"`
	Description    string  `gorm:"not null"`
	ProjectID      uint    `gorm:"not null;index"`
	AssignedToID   *uint   `gorm:"index"`
	CreatedByID    uint    `gorm:"not null;index"`
	StatusID       uint    `gorm:"not null;index"`
	Priority       string  `gorm:"default:Medium"`
	EstimatedHours float64 `gorm:"default:0"`
	ActualHours    float64 `gorm:"default:0"`
	StartDate      time.Time
	DueDate        *time.Time
	CompletedAt    *time.Time
	Tags           datatypes.JSON `gorm:"type:jsonb"`
	IsActive       bool           `gorm:"default:true"`

	// Relationships
	Project    Project `gorm:"foreignKey:ProjectID"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID"`
	CreatedBy  User    `gorm:"foreignKey:CreatedByID"`
	Status     State   `gorm:"foreignKey:StatusID"`
}

// IsAssignedTo reports whether the task is assigned to userID.
func (t *Task) IsAssignedTo(userID uint) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
