package handlers

import (
	"net/http"
	"testing"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupTest(t)

	payload := map[string]any{
		"first_name": "Carmen",
		"last_name":  "Rueda",
		"email":      "carmen@example.com",
		"password":   "supersecret",
	}

	resp := doRequest(t, r, http.MethodPost, "/api/auth/register", "", payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register = %d, want 201 (body %s)", resp.Code, resp.Body.String())
	}

	// Registration queues a welcome email instead of sending inline.
	var queued int64
	db.DB.Model(&models.Notification{}).Where("kind = ?", "welcome").Count(&queued)
	if queued != 1 {
		t.Errorf("welcome notifications queued = %d, want 1", queued)
	}

	resp = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "carmen@example.com",
		"password": "supersecret",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200 (body %s)", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}

	resp = doRequest(t, r, http.MethodGet, "/api/users/profile", token, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("profile with fresh token = %d, want 200", resp.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupTest(t)
	createUser(t, "taken@example.com", models.RoleViewer)

	resp := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"first_name": "Someone",
		"last_name":  "Else",
		"email":      "taken@example.com",
		"password":   "supersecret",
	})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register = %d, want 400", resp.Code)
	}
	if msg := decodeBody(t, resp)["msg"]; msg != "Email is already registered" {
		t.Errorf("msg = %q", msg)
	}
}

func TestRegisterEmailHeldByUnseenRow(t *testing.T) {
	r := setupTest(t)

	// The unique index still holds the email when the existence check
	// cannot see the row, as when a concurrent registration wins the race.
	user, _ := createUser(t, "taken@example.com", models.RoleViewer)
	if err := db.DB.Delete(&user).Error; err != nil {
		t.Fatalf("soft delete user: %v", err)
	}

	resp := doRequest(t, r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"first_name": "Someone",
		"last_name":  "Else",
		"email":      "taken@example.com",
		"password":   "supersecret",
	})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("register over held email = %d, want 400 (body %s)", resp.Code, resp.Body.String())
	}
	if msg := decodeBody(t, resp)["msg"]; msg != "Email is already registered" {
		t.Errorf("msg = %q", msg)
	}
}

func TestLoginRejectsWrongPasswordAndInactive(t *testing.T) {
	r := setupTest(t)
	user, _ := createUser(t, "active@example.com", models.RoleViewer)

	resp := doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "active@example.com",
		"password": "wrong-password",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("wrong password = %d, want 400", resp.Code)
	}

	db.DB.Model(&user).Update("is_active", false)

	resp = doRequest(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "active@example.com",
		"password": "password123",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("inactive login = %d, want 400", resp.Code)
	}
}

func TestDeactivatedTokenStopsWorking(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "soon-gone@example.com", models.RoleViewer)

	resp := doRequest(t, r, http.MethodGet, "/api/users/profile", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("profile = %d, want 200", resp.Code)
	}

	db.DB.Model(&user).Update("is_active", false)

	resp = doRequest(t, r, http.MethodGet, "/api/users/profile", token, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("profile after deactivation = %d, want 401", resp.Code)
	}
}
