package types

import (
	"encoding/json"
	"time"

	"github.com/carenrueda/api-gestion/internal/models"
	"gorm.io/datatypes"
)

type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role,omitempty"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
		Role:      u.GlobalRole.Name,
	}
}

type RoleResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewRoleResponse(r models.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, Description: r.Description}
}

type StateResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       int    `json:"order"`
	IsFinal     bool   `json:"is_final"`
}

func NewStateResponse(s models.State) StateResponse {
	return StateResponse{
		ID:          s.ID,
		Name:        s.Name,
		Type:        s.Type,
		Description: s.Description,
		Color:       s.Color,
		Order:       s.Order,
		IsFinal:     s.IsFinal,
	}
}

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

type MemberResponse struct {
	User     UserResponse `json:"user"`
	Role     RoleResponse `json:"role"`
	JoinedAt time.Time    `json:"joined_at"`
}

type ProjectResponse struct {
	ID             uint             `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       CategoryResponse `json:"category"`
	Owner          UserResponse     `json:"owner"`
	Status         StateResponse    `json:"status"`
	Priority       string           `json:"priority"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        *time.Time       `json:"end_date,omitempty"`
	EstimatedHours float64          `json:"estimated_hours"`
	ActualHours    float64          `json:"actual_hours"`
	Budget         float64          `json:"budget"`
	ImageURL       string           `json:"image_url,omitempty"`
	Tags           []string         `json:"tags"`
	Members        []MemberResponse `json:"members"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func NewProjectResponse(p models.Project) ProjectResponse {
	members := make([]MemberResponse, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, MemberResponse{
			User:     NewUserResponse(m.User),
			Role:     NewRoleResponse(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}

	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       NewCategoryResponse(p.Category),
		Owner:          NewUserResponse(p.Owner),
		Status:         NewStateResponse(p.Status),
		Priority:       p.Priority,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		EstimatedHours: p.EstimatedHours,
		ActualHours:    p.ActualHours,
		Budget:         p.Budget,
		ImageURL:       p.ImageURL,
		Tags:           decodeTags(p.Tags),
		Members:        members,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type TaskResponse struct {
	ID             uint          `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	ProjectID      uint          `json:"project_id"`
	AssignedTo     *UserResponse `json:"assigned_to,omitempty"`
	CreatedBy      UserResponse  `json:"created_by"`
	Status         StateResponse `json:"status"`
	Priority       string        `json:"priority"`
	EstimatedHours float64       `json:"estimated_hours"`
	ActualHours    float64       `json:"actual_hours"`
	StartDate      time.Time     `json:"start_date"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	Tags           []string      `json:"tags"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func NewTaskResponse(t models.Task) TaskResponse {
	resp := TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		ProjectID:      t.ProjectID,
		CreatedBy:      NewUserResponse(t.CreatedBy),
		Status:         NewStateResponse(t.Status),
		Priority:       t.Priority,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		StartDate:      t.StartDate,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		Tags:           decodeTags(t.Tags),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}

	if t.AssignedTo != nil {
		assigned := NewUserResponse(*t.AssignedTo)
		resp.AssignedTo = &assigned
	}

	return resp
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	Content   string       `json:"content"`
	Author    UserResponse `json:"author"`
	ProjectID uint         `json:"project_id"`
	EditedAt  *time.Time   `json:"edited_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewCommentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    NewUserResponse(c.Author),
		ProjectID: c.ProjectID,
		EditedAt:  c.EditedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func decodeTags(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}
