package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/taskflow/core/internal/domain"
)

func TestUpdateIfVersionBumpsVersionOnMatch(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	id := uuid.New()
	owner := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
		"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
	}).AddRow(id, "T1", "", now.Add(time.Hour), domain.PriorityMedium, domain.StatusOpen, owner, nil,
		false, nil, now, now, int64(2))

	pool.ExpectQuery(`UPDATE tasks SET`).
		WithArgs("T1", "", now.Add(time.Hour), domain.PriorityMedium, domain.StatusOpen, (*uuid.UUID)(nil), id, int64(1)).
		WillReturnRows(rows)

	r := NewTaskRepository(pool)
	task := &domain.Task{
		ID: id, Title: "T1", DueDate: now.Add(time.Hour),
		Priority: domain.PriorityMedium, Status: domain.StatusOpen,
	}
	updated, err := r.UpdateIfVersion(context.Background(), task, 1)
	if err != nil {
		t.Fatalf("UpdateIfVersion: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}

	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateIfVersionReturnsConflictOnNoRows(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	id := uuid.New()
	now := time.Now().UTC()

	emptyRows := pgxmock.NewRows([]string{
		"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
		"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
	})

	pool.ExpectQuery(`UPDATE tasks SET`).WillReturnRows(emptyRows)

	r := NewTaskRepository(pool)
	task := &domain.Task{ID: id, DueDate: now.Add(time.Hour), Priority: domain.PriorityLow, Status: domain.StatusOpen}
	_, err = r.UpdateIfVersion(context.Background(), task, 99)
	if err != domain.ErrConcurrencyConflict {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
}

func TestClaimDueReturnsAffectedCount(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	now := time.Now().UTC()
	pool.ExpectExec(`UPDATE tasks SET due_notified_at`).
		WithArgs(now, 10).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	r := NewTaskRepository(pool)
	n, err := r.ClaimDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 claimed, got %d", n)
	}
}

func TestClaimDueNoRowsIsNoop(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	now := time.Now().UTC()
	pool.ExpectExec(`UPDATE tasks SET due_notified_at`).
		WithArgs(now, 50).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	r := NewTaskRepository(pool)
	n, err := r.ClaimDue(context.Background(), now, 50)
	if err != nil {
		t.Fatalf("ClaimDue: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 claimed, got %d", n)
	}
}
