package models

import "gorm.io/gorm"

// Role names form a closed set; anything else is rejected at the handler.
const (
	RoleAdmin          = "Admin"
	RoleProjectManager = "Project Manager"
	RoleDeveloper      = "Developer"
	RoleViewer         = "Viewer"
	RoleTester         = "Tester"
	RoleQA             = "QA"
)

var AllowedRoleNames = []string{
	RoleAdmin,
	RoleProjectManager,
	RoleDeveloper,
	RoleViewer,
	RoleTester,
	RoleQA,
}

func IsAllowedRoleName(name string) bool {
	for _, allowed := range AllowedRoleNames {
		if name == allowed {
			return true
		}
	}
	return false
}

type Role struct {
	gorm.Model

	Name        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"not null"`
	IsActive    bool   `gorm:"default:true"`
}
