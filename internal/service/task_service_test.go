package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/taskflow/core/internal/domain"
	"github.com/taskflow/core/internal/repository"
)

func newTestService(t *testing.T, now time.Time) (*TaskService, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	t.Cleanup(pool.Close)

	svc := NewTaskService(repository.NewTaskRepository(pool), repository.NewUserRepository(pool))
	svc.Now = func() time.Time { return now }
	return svc, pool
}

func TestCreateTaskRejectsPastDueDate(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	_, _, _, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:   "T1",
		DueDate: now.Add(-24 * time.Hour),
		Owner:   UserInput{FullName: "A", Email: "a@x.io"},
	})

	var invalid *domain.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestCreateTaskRejectsExplicitOverdueStatus(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	overdue := domain.StatusOverdue
	_, _, _, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:   "T1",
		DueDate: now.Add(time.Hour),
		Status:  &overdue,
		Owner:   UserInput{FullName: "A", Email: "a@x.io"},
	})
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestUpdateTaskOverdueGateRejectsPastDueDate(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, pool := newTestService(t, now)

	id := uuid.New()
	owner := uuid.New()
	rows := pgxmock.NewRows([]string{
		"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
		"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
	}).AddRow(id, "T1", "", now.Add(-time.Hour), domain.PriorityMedium, domain.StatusOpen, owner, nil,
		false, nil, now, now, int64(1))
	pool.ExpectQuery(`SELECT`).WithArgs(id).WillReturnRows(rows)

	_, err := svc.UpdateTask(context.Background(), id, UpdateTaskInput{
		Title:    "T1",
		DueDate:  now.Add(-10 * time.Minute), // still in the past
		Priority: domain.PriorityMedium,
		Status:   domain.StatusOpen,
	}, 1)

	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestUpdateTaskExitsOverdueWhenDueDateMovesForward(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, pool := newTestService(t, now)

	id := uuid.New()
	owner := uuid.New()
	findRows := pgxmock.NewRows([]string{
		"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
		"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
	}).AddRow(id, "T1", "", now.Add(-time.Hour), domain.PriorityMedium, domain.StatusOpen, owner, nil,
		false, nil, now, now, int64(1))
	pool.ExpectQuery(`SELECT`).WithArgs(id).WillReturnRows(findRows)

	newDue := now.Add(time.Hour)
	updateRows := pgxmock.NewRows([]string{
		"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
		"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
	}).AddRow(id, "T1", "", newDue, domain.PriorityMedium, domain.StatusOpen, owner, nil,
		false, nil, now, now, int64(2))
	pool.ExpectQuery(`UPDATE tasks SET`).WillReturnRows(updateRows)

	updated, err := svc.UpdateTask(context.Background(), id, UpdateTaskInput{
		Title:    "T1",
		DueDate:  newDue,
		Priority: domain.PriorityMedium,
		Status:   domain.StatusOpen,
	}, 1)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != domain.StatusOpen {
		t.Fatalf("expected Open, got %s", updated.Status)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version to advance (P5), got %d", updated.Version)
	}
}

func TestUpdateTaskStatusRejectsExplicitOverdue(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	_, err := svc.UpdateTaskStatus(context.Background(), uuid.New(), domain.StatusOverdue, 1)
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}
