package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectMember links a user to a project with a per-project role. The
// unique index makes a concurrent duplicate add lose at the database
// rather than racing on an in-memory list.
type ProjectMember struct {
	gorm.Model

	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_user"`
	RoleID    uint      `gorm:"not null"`
	JoinedAt  time.Time `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
	Role    Role    `gorm:"foreignKey:RoleID"`
}
