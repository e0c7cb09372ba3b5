package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is the only aggregate that is hard-deleted; everything else
// flips IsActive instead.
type Comment struct {
	gorm.Model

	Content   string `gorm:"not null"`
	AuthorID  uint   `gorm:"not null;index"`
	ProjectID uint   `gorm:"not null;index"`
	EditedAt  *time.Time

	// Relationships
	Author  User    `gorm:"foreignKey:AuthorID"`
	Project Project `gorm:"foreignKey:ProjectID"`
}
