package access

import (
	"testing"

	"github.com/carenrueda/api-gestion/internal/models"
)

const (
	ownerID    uint = 1
	memberID   uint = 2
	assigneeID uint = 3
	creatorID  uint = 4
	strangerID uint = 5
)

func activeProject() *models.Project {
	p := &models.Project{
		OwnerID:  ownerID,
		IsActive: true,
		Members: []models.ProjectMember{
			{UserID: memberID},
			{UserID: assigneeID},
			{UserID: creatorID},
		},
	}
	p.ID = 10
	return p
}

func projectTask(p *models.Project) *models.Task {
	assignee := assigneeID
	t := &models.Task{
		ProjectID:    p.ID,
		AssignedToID: &assignee,
		CreatedByID:  creatorID,
		IsActive:     true,
	}
	t.ID = 20
	return t
}

func TestProjectOperations(t *testing.T) {
	project := activeProject()

	cases := []struct {
		name   string
		op     Operation
		caller uint
		want   Decision
	}{
		{"owner reads", ProjectRead, ownerID, Allow},
		{"member reads", ProjectRead, memberID, Allow},
		{"stranger read hides project", ProjectRead, strangerID, NotFound},
		{"owner updates", ProjectUpdate, ownerID, Allow},
		{"member update hides project", ProjectUpdate, memberID, NotFound},
		{"stranger update hides project", ProjectUpdate, strangerID, NotFound},
		{"owner deletes", ProjectDelete, ownerID, Allow},
		{"member delete hides project", ProjectDelete, memberID, NotFound},
		{"owner manages members", ProjectManageMembers, ownerID, Allow},
		{"member cannot manage members", ProjectManageMembers, memberID, NotFound},
		{"member changes status", ProjectChangeStatus, memberID, Allow},
		{"stranger cannot change status", ProjectChangeStatus, strangerID, NotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.op, tc.caller, Subject{Project: project})
			if got != tc.want {
				t.Errorf("Decide(%s, caller=%d) = %s, want %s", tc.op, tc.caller, got, tc.want)
			}
		})
	}
}

func TestInactiveProjectHiddenFromEveryone(t *testing.T) {
	project := activeProject()
	project.IsActive = false

	for _, op := range []Operation{ProjectRead, ProjectUpdate, ProjectDelete, ProjectManageMembers, ProjectChangeStatus} {
		if got := Decide(op, ownerID, Subject{Project: project}); got != NotFound {
			t.Errorf("Decide(%s) on inactive project = %s, want not found", op, got)
		}
	}
}

func TestTaskOperations(t *testing.T) {
	project := activeProject()
	task := projectTask(project)
	subject := Subject{Project: project, Task: task}

	cases := []struct {
		name   string
		op     Operation
		caller uint
		want   Decision
	}{
		{"owner reads task", TaskRead, ownerID, Allow},
		{"member reads task", TaskRead, memberID, Allow},
		{"assignee reads task", TaskRead, assigneeID, Allow},
		{"stranger read is forbidden not hidden", TaskRead, strangerID, Forbidden},
		{"owner updates task", TaskUpdate, ownerID, Allow},
		{"creator updates task", TaskUpdate, creatorID, Allow},
		{"assignee updates task", TaskUpdate, assigneeID, Allow},
		{"plain member cannot update", TaskUpdate, memberID, Forbidden},
		{"owner deletes task", TaskDelete, ownerID, Allow},
		{"creator deletes task", TaskDelete, creatorID, Allow},
		{"assignee cannot delete", TaskDelete, assigneeID, Forbidden},
		{"member changes status", TaskChangeStatus, memberID, Allow},
		{"assignee changes status", TaskChangeStatus, assigneeID, Allow},
		{"stranger cannot change status", TaskChangeStatus, strangerID, Forbidden},
		{"only owner assigns", TaskAssign, ownerID, Allow},
		{"creator cannot assign", TaskAssign, creatorID, Forbidden},
		{"member cannot assign", TaskAssign, memberID, Forbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.op, tc.caller, subject)
			if got != tc.want {
				t.Errorf("Decide(%s, caller=%d) = %s, want %s", tc.op, tc.caller, got, tc.want)
			}
		})
	}
}

func TestAssigneeOutsideProjectStillCounts(t *testing.T) {
	// An assignee who was later removed from the membership list keeps
	// read rights through the assignment itself.
	project := activeProject()
	project.Members = []models.ProjectMember{{UserID: memberID}}
	task := projectTask(project)

	if got := Decide(TaskRead, assigneeID, Subject{Project: project, Task: task}); got != Allow {
		t.Errorf("assignee without membership: Decide(task.read) = %s, want allow", got)
	}
}

func TestCommentOperations(t *testing.T) {
	project := activeProject()
	comment := &models.Comment{AuthorID: memberID, ProjectID: project.ID}
	subject := Subject{Project: project, Comment: comment}

	cases := []struct {
		name   string
		op     Operation
		caller uint
		want   Decision
	}{
		{"member creates", CommentCreate, memberID, Allow},
		{"stranger create hides project", CommentCreate, strangerID, NotFound},
		{"owner reads", CommentRead, ownerID, Allow},
		{"stranger read hides project", CommentRead, strangerID, NotFound},
		{"author edits", CommentEdit, memberID, Allow},
		{"owner cannot edit another author's comment", CommentEdit, ownerID, Forbidden},
		{"author deletes", CommentDelete, memberID, Allow},
		{"owner deletes any comment", CommentDelete, ownerID, Allow},
		{"other member cannot delete", CommentDelete, assigneeID, Forbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.op, tc.caller, subject)
			if got != tc.want {
				t.Errorf("Decide(%s, caller=%d) = %s, want %s", tc.op, tc.caller, got, tc.want)
			}
		})
	}
}

func TestAuthorWithoutAccessCannotEdit(t *testing.T) {
	project := activeProject()
	comment := &models.Comment{AuthorID: strangerID, ProjectID: project.ID}

	got := Decide(CommentEdit, strangerID, Subject{Project: project, Comment: comment})
	if got != Forbidden {
		t.Errorf("author who lost project access: Decide(comment.edit) = %s, want forbidden", got)
	}
}

func TestUnknownOperationFailsClosed(t *testing.T) {
	project := activeProject()

	if got := Decide(Operation("project.export"), ownerID, Subject{Project: project}); got != NotFound {
		t.Errorf("unknown operation = %s, want not found", got)
	}
}
