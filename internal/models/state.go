package models

import "gorm.io/gorm"

const (
	StateTypeProject = "Project"
	StateTypeTask    = "Task"
)

func IsValidStateType(t string) bool {
	return t == StateTypeProject || t == StateTypeTask
}

// State is a lifecycle status row shared by projects and tasks; the Type
// column decides which entity family it applies to. IsFinal marks terminal
// states (completing a task stamps CompletedAt).
type State struct {
	gorm.Model

	Name        string `gorm:"not null;uniqueIndex:idx_state_name_type"`
	Type        string `gorm:"not null;uniqueIndex:idx_state_name_type"`
	Description string
	Color       string `gorm:"default:#6b7280"`
	Order       int    `gorm:"default:0"`
	IsFinal     bool   `gorm:"default:false"`
	IsActive    bool   `gorm:"default:true"`
}
