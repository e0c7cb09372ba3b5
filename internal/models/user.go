package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Phone        string
	Avatar       string
	GlobalRoleID uint `gorm:"not null;index"`
	LastLogin    *time.Time
	IsActive     bool `gorm:"default:true"`

	// Relationships
	GlobalRole         Role            `gorm:"foreignKey:GlobalRoleID"`
	OwnedProjects      []Project       `gorm:"foreignKey:OwnerID"`
	ProjectMemberships []ProjectMember `gorm:"foreignKey:UserID"`
}
