package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Project struct {
	gorm.Model

	Name           string `gorm:"not null"`
	Description    string `gorm:"not null"`
	CategoryID     uint   `gorm:"not null;index"`
	OwnerID        uint   `gorm:"not null;index"`
	StatusID       uint   `gorm:"not null;index"`
	Priority       string `gorm:"default:Medium"`
	StartDate      time.Time
	EndDate        *time.Time
	EstimatedHours float64 `gorm:"default:0"`
	ActualHours    float64 `gorm:"default:0"`
	Budget         float64 `gorm:"default:0"`
	ImageURL       string
	Tags           datatypes.JSON `gorm:"type:jsonb"`
	IsActive       bool           `gorm:"default:true"`

	// Relationships
	Category Category        `gorm:"foreignKey:CategoryID"`
	Owner    User            `gorm:"foreignKey:OwnerID"`
	Status   State           `gorm:"foreignKey:StatusID"`
	Members  []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks    []Task          `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments []Comment       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// HasMember reports whether userID appears in the loaded Members slice.
// The owner is not a member row; callers check OwnerID separately.
func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
