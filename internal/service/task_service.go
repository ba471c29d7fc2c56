// Package service implements the domain rules layered on top of the
// repositories (spec §4.2): validation, owner/assignee upsert, overdue
// computation, and typed failure surfacing.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/taskflow/core/internal/domain"
	"github.com/taskflow/core/internal/repository"
)

// TaskService implements the Task domain operations of spec §4.2.
type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
	// Now is the clock the service reads; defaults to time.Now but is
	// overridable in tests that need a fixed instant.
	Now func() time.Time
}

// NewTaskService builds a TaskService over the given repositories.
func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *TaskService) now() time.Time { return s.Now() }

// UserInput describes an owner or assignee to upsert by email.
type UserInput struct {
	FullName  string
	Email     string
	Telephone string
}

// CreateTaskInput is the input to CreateTask.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.Priority
	Status      *domain.Status // nil => Open
	Owner       UserInput
	Assignee    *UserInput // nil => assignee = owner
}

// CreateTask validates and persists a new task, upserting owner/assignee by
// email (spec §4.2).
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, *domain.User, *domain.User, error) {
	now := s.now()
	if !in.DueDate.After(now) {
		return nil, nil, nil, domain.NewInvalidOperation("due date must be in future")
	}

	status := domain.StatusOpen
	if in.Status != nil {
		if *in.Status == domain.StatusOverdue {
			return nil, nil, nil, domain.NewInvalidOperation("status Overdue is computed, not client-settable")
		}
		if !domain.ValidStatus(*in.Status) {
			return nil, nil, nil, domain.NewInvalidOperation("unknown status")
		}
		status = *in.Status
	}

	owner, err := s.users.UpsertByEmail(ctx, in.Owner.FullName, in.Owner.Email, in.Owner.Telephone)
	if err != nil {
		return nil, nil, nil, err
	}

	assignee := owner
	if in.Assignee != nil {
		assignee, err = s.users.UpsertByEmail(ctx, in.Assignee.FullName, in.Assignee.Email, in.Assignee.Telephone)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      status,
		OwnerID:     owner.ID,
		AssigneeID:  &assignee.ID,
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to create task")
		return nil, nil, nil, err
	}
	return created, owner, assignee, nil
}

// GetTask returns the task with the given id, or domain.ErrNotFound.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// ListTasks returns a page of tasks matching filter plus the total count.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	return s.tasks.List(ctx, filter)
}

// UpdateTaskInput is the input to UpdateTask.
type UpdateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.Priority
	Status      domain.Status
	AssigneeID  *uuid.UUID
}

// UpdateTask applies a full update to the task with the given id, enforcing
// the overdue gate (P4) and version check (P1), and recomputing the
// Overdue status (spec §4.2).
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, in UpdateTaskInput, expectedVersion int64) (*domain.Task, error) {
	now := s.now()

	if in.Status == domain.StatusOverdue {
		return nil, domain.NewInvalidOperation("status Overdue is computed, not client-settable")
	}
	if !domain.ValidStatus(in.Status) {
		return nil, domain.NewInvalidOperation("unknown status")
	}

	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The strict rule subsumes the overdue gate: any dueDate in the past
	// is rejected outright, whether or not the task is currently overdue
	// (DESIGN NOTES §9, decision 2), so a task can only ever leave Overdue
	// by moving its due date into the future.
	if !in.DueDate.After(now) {
		return nil, domain.NewInvalidOperation("due date must not be in the past")
	}

	if in.AssigneeID != nil && (current.AssigneeID == nil || *current.AssigneeID != *in.AssigneeID) {
		exists, err := s.users.Exists(ctx, *in.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
	}

	next := *current
	next.Title = in.Title
	next.Description = in.Description
	next.DueDate = in.DueDate
	next.Priority = in.Priority
	next.Status = in.Status
	next.AssigneeID = in.AssigneeID

	// Service computes Overdue; clients must never set it explicitly.
	if next.IsOverdue(now) {
		next.Status = domain.StatusOverdue
	}

	return s.tasks.UpdateIfVersion(ctx, &next, expectedVersion)
}

// UpdateTaskStatus updates only the status field, subject to the same
// overdue-gate and explicit-Overdue restrictions as UpdateTask.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id uuid.UUID, newStatus domain.Status, expectedVersion int64) (*domain.Task, error) {
	if newStatus == domain.StatusOverdue {
		return nil, domain.NewInvalidOperation("status Overdue is computed, not client-settable")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, domain.NewInvalidOperation("unknown status")
	}

	now := s.now()
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.IsOverdue(now) {
		return nil, domain.NewInvalidOperation("cannot update overdue task unless due date moves to future")
	}

	next := *current
	next.Status = newStatus
	if next.IsOverdue(now) {
		next.Status = domain.StatusOverdue
	}

	return s.tasks.UpdateIfVersion(ctx, &next, expectedVersion)
}

// UpdateTaskAssignee sets or clears the assignee, with version-check; the
// new assignee (if any) must exist.
func (s *TaskService) UpdateTaskAssignee(ctx context.Context, id uuid.UUID, userID *uuid.UUID, expectedVersion int64) (*domain.Task, error) {
	now := s.now()
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.IsOverdue(now) {
		return nil, domain.NewInvalidOperation("cannot update overdue task unless due date moves to future")
	}

	if userID != nil {
		exists, err := s.users.Exists(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
	}

	next := *current
	next.AssigneeID = userID
	if next.IsOverdue(now) {
		next.Status = domain.StatusOverdue
	}

	return s.tasks.UpdateIfVersion(ctx, &next, expectedVersion)
}

// DeleteTask deletes the task unconditionally (administrative semantics,
// no version check per spec §4.2).
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.tasks.Delete(ctx, id)
}
