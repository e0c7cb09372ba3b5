// Package access is the single authorization point for the Project, Task
// and Comment aggregates. Every operation maps to one predicate over the
// caller and the loaded aggregate, and every predicate carries the outcome
// a denied caller receives. The split between NotFound and Forbidden is
// deliberate and uneven: project-level operations hide the resource from
// outsiders, while task and comment operations admit the resource exists
// and refuse the action. Both behaviors are load-bearing; do not normalize
// one into the other.
package access

import "github.com/carenrueda/api-gestion/internal/models"

type Decision int

const (
	Allow Decision = iota
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

type Operation string

const (
	ProjectRead          Operation = "project.read"
	ProjectUpdate        Operation = "project.update"
	ProjectDelete        Operation = "project.delete"
	ProjectManageMembers Operation = "project.members"
	ProjectChangeStatus  Operation = "project.status"

	TaskRead         Operation = "task.read"
	TaskUpdate       Operation = "task.update"
	TaskDelete       Operation = "task.delete"
	TaskChangeStatus Operation = "task.status"
	TaskAssign       Operation = "task.assign"

	CommentRead   Operation = "comment.read"
	CommentCreate Operation = "comment.create"
	CommentEdit   Operation = "comment.edit"
	CommentDelete Operation = "comment.delete"
)

// Subject carries whichever aggregates the operation concerns. Project is
// always set and must have Members preloaded; Task and Comment are set for
// their respective operations.
type Subject struct {
	Project *models.Project
	Task    *models.Task
	Comment *models.Comment
}

type rule struct {
	allowed func(callerID uint, s Subject) bool
	onDeny  Decision
}

var rules = map[Operation]rule{
	ProjectRead:          {allowed: projectOwnerOrMember, onDeny: NotFound},
	ProjectUpdate:        {allowed: projectOwnerOnly, onDeny: NotFound},
	ProjectDelete:        {allowed: projectOwnerOnly, onDeny: NotFound},
	ProjectManageMembers: {allowed: projectOwnerOnly, onDeny: NotFound},
	ProjectChangeStatus:  {allowed: projectOwnerOrMember, onDeny: NotFound},

	TaskRead:         {allowed: taskOwnerOrMemberOrAssignee, onDeny: Forbidden},
	TaskUpdate:       {allowed: taskOwnerOrCreatorOrAssignee, onDeny: Forbidden},
	TaskDelete:       {allowed: taskOwnerOrCreator, onDeny: Forbidden},
	TaskChangeStatus: {allowed: taskOwnerOrMemberOrAssignee, onDeny: Forbidden},
	TaskAssign:       {allowed: taskProjectOwnerOnly, onDeny: Forbidden},

	CommentRead:   {allowed: projectOwnerOrMember, onDeny: NotFound},
	CommentCreate: {allowed: projectOwnerOrMember, onDeny: NotFound},
	CommentEdit:   {allowed: commentAuthorWithAccess, onDeny: Forbidden},
	CommentDelete: {allowed: commentAuthorOrProjectOwner, onDeny: Forbidden},
}

// Decide evaluates the operation's predicate. Unknown operations deny as
// NotFound so a wiring mistake fails closed.
func Decide(op Operation, callerID uint, s Subject) Decision {
	r, ok := rules[op]
	if !ok {
		return NotFound
	}

	if r.allowed(callerID, s) {
		return Allow
	}

	return r.onDeny
}

func projectOwnerOrMember(callerID uint, s Subject) bool {
	p := s.Project
	if p == nil || !p.IsActive {
		return false
	}
	return p.OwnerID == callerID || p.HasMember(callerID)
}

func projectOwnerOnly(callerID uint, s Subject) bool {
	p := s.Project
	if p == nil || !p.IsActive {
		return false
	}
	return p.OwnerID == callerID
}

func taskOwnerOrMemberOrAssignee(callerID uint, s Subject) bool {
	if s.Project == nil || s.Task == nil {
		return false
	}
	return s.Project.OwnerID == callerID ||
		s.Project.HasMember(callerID) ||
		s.Task.IsAssignedTo(callerID)
}

func taskOwnerOrCreatorOrAssignee(callerID uint, s Subject) bool {
	if s.Project == nil || s.Task == nil {
		return false
	}
	return s.Project.OwnerID == callerID ||
		s.Task.CreatedByID == callerID ||
		s.Task.IsAssignedTo(callerID)
}

func taskOwnerOrCreator(callerID uint, s Subject) bool {
	if s.Project == nil || s.Task == nil {
		return false
	}
	return s.Project.OwnerID == callerID || s.Task.CreatedByID == callerID
}

func taskProjectOwnerOnly(callerID uint, s Subject) bool {
	if s.Project == nil || s.Task == nil {
		return false
	}
	return s.Project.OwnerID == callerID
}

// commentAuthorWithAccess requires authorship and current project access.
// Losing membership revokes edit rights on one's own past comments.
func commentAuthorWithAccess(callerID uint, s Subject) bool {
	if s.Comment == nil || s.Comment.AuthorID != callerID {
		return false
	}
	return projectOwnerOrMember(callerID, s)
}

func commentAuthorOrProjectOwner(callerID uint, s Subject) bool {
	if s.Comment == nil || s.Project == nil {
		return false
	}
	return s.Comment.AuthorID == callerID || s.Project.OwnerID == callerID
}
