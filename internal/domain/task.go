// Package domain holds the core Task/User types and invariants shared by
// the repository and service layers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the priority tier of a Task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ValidPriority reports whether p is one of the known priority tiers.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusOverdue    Status = "Overdue"
	StatusCancelled  Status = "Cancelled"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status, excluded from scanner claiming (P3).
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// User is an opaque owner/assignee reference.
type User struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	Telephone string
	CreatedAt time.Time
}

// Task is the unit of work tracked by the service.
type Task struct {
	ID            uuid.UUID
	Title         string
	Description   string
	DueDate       time.Time
	Priority      Priority
	Status        Status
	OwnerID       uuid.UUID
	AssigneeID    *uuid.UUID
	ReminderSent  bool
	DueNotifiedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// IsOverdue reports whether t is overdue as of now: dueDate < now and status
// is not terminal (I3, minus the dueNotifiedAt clause which only gates the
// scanner's claim query, not the service's notion of "currently overdue").
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Before(now) && !t.Status.Terminal()
}

// ClaimEligible reports whether t is eligible for the scanner to claim (I3).
func (t *Task) ClaimEligible(now time.Time) bool {
	return t.DueDate.Before(now) && t.DueNotifiedAt == nil && !t.Status.Terminal()
}
