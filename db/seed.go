package db

import (
	"errors"

	"github.com/carenrueda/api-gestion/internal/models"
	"gorm.io/gorm"
)

var defaultProjectStates = []models.State{
	{Name: "Planning", Description: "Project in its initial planning phase", Type: models.StateTypeProject, Color: "#3b82f6", Order: 1},
	{Name: "In Progress", Description: "Project actively under development", Type: models.StateTypeProject, Color: "#f59e0b", Order: 2},
	{Name: "In Review", Description: "Project under review", Type: models.StateTypeProject, Color: "#8b5cf6", Order: 3},
	{Name: "Completed", Description: "Project finished successfully", Type: models.StateTypeProject, Color: "#10b981", Order: 4, IsFinal: true},
	{Name: "Cancelled", Description: "Project cancelled", Type: models.StateTypeProject, Color: "#ef4444", Order: 5, IsFinal: true},
	{Name: "On Hold", Description: "Project temporarily paused", Type: models.StateTypeProject, Color: "#6b7280", Order: 6},
}

var defaultTaskStates = []models.State{
	{Name: "Pending", Description: "Task created but not started", Type: models.StateTypeTask, Color: "#6b7280", Order: 1},
	{Name: "In Progress", Description: "Task actively being worked on", Type: models.StateTypeTask, Color: "#f59e0b", Order: 2},
	{Name: "In Review", Description: "Task done, waiting for review", Type: models.StateTypeTask, Color: "#8b5cf6", Order: 3},
	{Name: "Blocked", Description: "Task blocked by external dependencies", Type: models.StateTypeTask, Color: "#ef4444", Order: 4},
	{Name: "Completed", Description: "Task finished and approved", Type: models.StateTypeTask, Color: "#10b981", Order: 5, IsFinal: true},
	{Name: "Cancelled", Description: "Task cancelled", Type: models.StateTypeTask, Color: "#dc2626", Order: 6, IsFinal: true},
}

var defaultRoles = []models.Role{
	{Name: models.RoleAdmin, Description: "System administrator with full permissions", IsActive: true},
	{Name: models.RoleProjectManager, Description: "Project manager with project administration permissions", IsActive: true},
	{Name: models.RoleDeveloper, Description: "Developer with permissions to work on tasks", IsActive: true},
	{Name: models.RoleViewer, Description: "Read-only user", IsActive: true},
}

// SeedStates inserts the default state catalog for each entity type, but
// only when zero rows of that type exist. Partially populated types are
// left alone, not merged.
func SeedStates() error {
	for _, seed := range [][]models.State{defaultProjectStates, defaultTaskStates} {
		var count int64
		if err := DB.Model(&models.State{}).Where("type = ?", seed[0].Type).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		for i := range seed {
			state := seed[i]
			state.IsActive = true
			if err := DB.Create(&state).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedRoles guarantees the minimal role catalog exists, per name, so that
// self-registration can default a new user to Viewer.
func SeedRoles() error {
	for _, seed := range defaultRoles {
		var existing models.Role
		err := DB.Where("name = ?", seed.Name).First(&existing).Error

		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role := seed
		if err := DB.Create(&role).Error; err != nil {
			return err
		}
	}

	return nil
}
