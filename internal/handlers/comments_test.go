package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/gin-gonic/gin"
)

func postComment(t *testing.T, r *gin.Engine, projectID uint, token, content string) models.Comment {
	t.Helper()

	resp := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/comments", projectID), token, map[string]any{
		"content": content,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create comment = %d, want 201 (body %s)", resp.Code, resp.Body.String())
	}

	var comment models.Comment
	if err := db.DB.Where("project_id = ? AND content = ?", projectID, content).First(&comment).Error; err != nil {
		t.Fatalf("comment not stored: %v", err)
	}
	return comment
}

func TestCommentNotifiesEveryoneButAuthor(t *testing.T) {
	r := setupTest(t)
	owner, _ := createUser(t, "owner@example.com", models.RoleProjectManager)
	member, memberToken := createUser(t, "member@example.com", models.RoleDeveloper)
	project := createProject(t, owner)
	addMember(t, project, member)

	postComment(t, r, project.ID, memberToken, "first comment")

	var notification models.Notification
	if err := db.DB.Where("kind = ?", "comment").First(&notification).Error; err != nil {
		t.Fatalf("no comment notification queued: %v", err)
	}
	if notification.Recipients != owner.Email {
		t.Errorf("recipients = %q, want only %q", notification.Recipients, owner.Email)
	}
}

func TestEditRightsLapseWithMembership(t *testing.T) {
	r := setupTest(t)
	owner, _ := createUser(t, "owner@example.com", models.RoleProjectManager)
	member, memberToken := createUser(t, "member@example.com", models.RoleDeveloper)
	project := createProject(t, owner)
	addMember(t, project, member)

	comment := postComment(t, r, project.ID, memberToken, "editable while a member")

	resp := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/comments/%d", comment.ID), memberToken, map[string]any{
		"content": "edited",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("edit as member = %d, want 200 (body %s)", resp.Code, resp.Body.String())
	}

	var edited models.Comment
	if err := db.DB.First(&edited, comment.ID).Error; err != nil {
		t.Fatalf("reload comment: %v", err)
	}
	if edited.EditedAt == nil {
		t.Error("edited_at not set")
	}

	// Removing the membership revokes edit rights on their own comment.
	if err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, member.ID).Delete(&models.ProjectMember{}).Error; err != nil {
		t.Fatalf("failed to remove membership: %v", err)
	}

	resp = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/comments/%d", comment.ID), memberToken, map[string]any{
		"content": "edited again",
	})
	if resp.Code != http.StatusForbidden {
		t.Errorf("edit after membership loss = %d, want 403", resp.Code)
	}
}

func TestOwnerDeletesAnyCommentAndItIsGoneForGood(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := createUser(t, "owner@example.com", models.RoleProjectManager)
	member, memberToken := createUser(t, "member@example.com", models.RoleDeveloper)
	project := createProject(t, owner)
	addMember(t, project, member)

	comment := postComment(t, r, project.ID, memberToken, "to be removed")

	// The owner may not edit it...
	resp := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/comments/%d", comment.ID), ownerToken, map[string]any{
		"content": "overwritten",
	})
	if resp.Code != http.StatusForbidden {
		t.Errorf("owner edit of other's comment = %d, want 403", resp.Code)
	}

	// ...but may delete it.
	resp = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), ownerToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("owner delete = %d, want 200", resp.Code)
	}

	// Hard delete: not even an Unscoped lookup finds the row.
	var count int64
	db.DB.Unscoped().Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 0 {
		t.Errorf("comment rows after delete = %d, want 0", count)
	}
}

func TestCommentListHiddenFromOutsiders(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := createUser(t, "owner@example.com", models.RoleProjectManager)
	_, outsiderToken := createUser(t, "outsider@example.com", models.RoleViewer)
	project := createProject(t, owner)

	postComment(t, r, project.ID, ownerToken, "private discussion")

	resp := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d/comments", project.ID), outsiderToken, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("outsider comment list = %d, want 404", resp.Code)
	}
}
