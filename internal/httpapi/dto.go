package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/core/internal/domain"
)

// userDTO is the wire representation of domain.User.
type userDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Telephone string    `json:"telephone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Telephone: u.Telephone,
		CreatedAt: u.CreatedAt,
	}
}

// taskDTO is the wire representation of domain.Task. Version is exposed
// both as an opaque token (for If-Match round-tripping) and is mirrored in
// the ETag response header by the task handlers.
type taskDTO struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDateUTC    time.Time  `json:"dueDateUtc"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	OwnerID       uuid.UUID  `json:"ownerUserId"`
	AssigneeID    *uuid.UUID `json:"assignedUserId,omitempty"`
	ReminderSent  bool       `json:"reminderSent"`
	DueNotifiedAt *time.Time `json:"dueNotifiedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Version       string     `json:"rowVersion"`
}

func toTaskDTO(t *domain.Task) taskDTO {
	return taskDTO{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		DueDateUTC:    t.DueDate,
		Priority:      string(t.Priority),
		Status:        string(t.Status),
		OwnerID:       t.OwnerID,
		AssigneeID:    t.AssigneeID,
		ReminderSent:  t.ReminderSent,
		DueNotifiedAt: t.DueNotifiedAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Version:       encodeVersion(t.Version),
	}
}

// taskListDTO is the paginated envelope returned by GET /tasks (P6/spec §6.1).
type taskListDTO struct {
	Items      []taskDTO `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
}

type userRefDTO struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Telephone string `json:"telephone,omitempty"`
}

// createTaskRequest is the POST /tasks body.
type createTaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDateUTC  time.Time   `json:"dueDateUtc"`
	Priority    string      `json:"priority"`
	Status      *string     `json:"status,omitempty"`
	Owner       userRefDTO  `json:"owner"`
	Assignee    *userRefDTO `json:"assignee,omitempty"`
}

// updateTaskRequest is the PUT /tasks/{id} body.
type updateTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDateUTC   time.Time  `json:"dueDateUtc"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	AssignedUserID *uuid.UUID `json:"assignedUserId,omitempty"`
}

// updateStatusRequest is the PATCH /tasks/{id}/status body.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateAssigneeRequest is the PATCH /tasks/{id}/assignee body.
type updateAssigneeRequest struct {
	AssignedUserID *uuid.UUID `json:"assignedUserId"`
}

// createUserRequest is the POST /users body.
type createUserRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}
