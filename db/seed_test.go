package db

import (
	"fmt"
	"testing"

	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := MigrateDatabase(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

func countStates(t *testing.T, stateType string) int64 {
	t.Helper()

	var count int64
	if err := DB.Model(&models.State{}).Where("type = ?", stateType).Count(&count).Error; err != nil {
		t.Fatalf("failed to count states: %v", err)
	}
	return count
}

func TestSeedStatesPopulatesEmptyCatalog(t *testing.T) {
	openTestDB(t)

	if err := SeedStates(); err != nil {
		t.Fatalf("SeedStates: %v", err)
	}

	if got := countStates(t, models.StateTypeProject); got != 6 {
		t.Errorf("project states = %d, want 6", got)
	}
	if got := countStates(t, models.StateTypeTask); got != 6 {
		t.Errorf("task states = %d, want 6", got)
	}

	// Second run must not duplicate anything.
	if err := SeedStates(); err != nil {
		t.Fatalf("SeedStates rerun: %v", err)
	}
	if got := countStates(t, models.StateTypeProject); got != 6 {
		t.Errorf("project states after rerun = %d, want 6", got)
	}
}

func TestSeedStatesLeavesPartialCatalogAlone(t *testing.T) {
	openTestDB(t)

	custom := models.State{Name: "Custom", Type: models.StateTypeProject, IsActive: true}
	if err := DB.Create(&custom).Error; err != nil {
		t.Fatalf("failed to insert custom state: %v", err)
	}

	if err := SeedStates(); err != nil {
		t.Fatalf("SeedStates: %v", err)
	}

	// The project catalog already has a row, so it is left as-is; the
	// empty task catalog is still filled.
	if got := countStates(t, models.StateTypeProject); got != 1 {
		t.Errorf("project states = %d, want 1", got)
	}
	if got := countStates(t, models.StateTypeTask); got != 6 {
		t.Errorf("task states = %d, want 6", got)
	}
}

func TestSeedRolesRestoresMissingNames(t *testing.T) {
	openTestDB(t)

	if err := SeedRoles(); err != nil {
		t.Fatalf("SeedRoles: %v", err)
	}

	var total int64
	DB.Model(&models.Role{}).Count(&total)
	if total != 4 {
		t.Fatalf("roles = %d, want 4", total)
	}

	if err := DB.Unscoped().Where("name = ?", models.RoleViewer).Delete(&models.Role{}).Error; err != nil {
		t.Fatalf("failed to delete role: %v", err)
	}

	if err := SeedRoles(); err != nil {
		t.Fatalf("SeedRoles rerun: %v", err)
	}

	var viewer models.Role
	if err := DB.Where("name = ?", models.RoleViewer).First(&viewer).Error; err != nil {
		t.Fatalf("Viewer role not restored: %v", err)
	}

	DB.Model(&models.Role{}).Count(&total)
	if total != 4 {
		t.Errorf("roles after rerun = %d, want 4", total)
	}
}
