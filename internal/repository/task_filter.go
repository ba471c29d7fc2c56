package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/core/internal/domain"
)

// Scope selects which side of a task's people a filter is restricted to.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeOwner
	ScopeAssignee
)

// SortKey is a column the list query may order by.
type SortKey string

const (
	SortDueDate   SortKey = "dueDate"
	SortCreatedAt SortKey = "createdAt"
	SortPriority  SortKey = "priority"
	SortStatus    SortKey = "status"
	SortTitle     SortKey = "title"
)

func (k SortKey) column() string {
	switch k {
	case SortCreatedAt:
		return "created_at"
	case SortPriority:
		return "priority"
	case SortStatus:
		return "status"
	case SortTitle:
		return "title"
	default:
		return "due_date"
	}
}

// SortDir is the ordering direction of a list query.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

func (d SortDir) sql() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// TaskFilter composes the optional predicates a list query may apply
// (spec §4.1 / DESIGN NOTES §9's "polymorphism over filters"). Zero value
// matches everything.
type TaskFilter struct {
	Scope            Scope
	UserID           uuid.UUID // meaningful only when Scope != ScopeAll
	StatusIn         []domain.Status
	PriorityIn       []domain.Priority
	OverdueOnly      bool
	ReminderSent     *bool
	Search           string
	Now              time.Time
	SortBy           SortKey
	SortDir          SortDir
	Page, PageSize   int
}

// NormalizePage clamps page/pageSize to the bounds in spec §4.1.
func (f *TaskFilter) NormalizePage() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// build renders the filter into a WHERE clause and its positional args,
// plus an ORDER BY clause. args starts empty; placeholders are numbered
// from startAt (1-based) so callers can append LIMIT/OFFSET afterwards.
func (f TaskFilter) build(startAt int) (where string, order string, args []any) {
	var clauses []string
	n := startAt

	switch f.Scope {
	case ScopeOwner:
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", n))
		args = append(args, f.UserID)
		n++
	case ScopeAssignee:
		clauses = append(clauses, fmt.Sprintf("assignee_id = $%d", n))
		args = append(args, f.UserID)
		n++
	}

	if len(f.StatusIn) > 0 {
		strs := make([]string, len(f.StatusIn))
		for i, s := range f.StatusIn {
			strs[i] = string(s)
		}
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", n))
		args = append(args, strs)
		n++
	}

	if len(f.PriorityIn) > 0 {
		strs := make([]string, len(f.PriorityIn))
		for i, p := range f.PriorityIn {
			strs[i] = string(p)
		}
		clauses = append(clauses, fmt.Sprintf("priority = ANY($%d)", n))
		args = append(args, strs)
		n++
	}

	if f.OverdueOnly {
		now := f.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		clauses = append(clauses, fmt.Sprintf("due_date < $%d AND status NOT IN ('Completed','Cancelled')", n))
		args = append(args, now)
		n++
	}

	if f.ReminderSent != nil {
		clauses = append(clauses, fmt.Sprintf("reminder_sent = $%d", n))
		args = append(args, *f.ReminderSent)
		n++
	}

	if strings.TrimSpace(f.Search) != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", n, n))
		args = append(args, f.Search)
		n++
	}

	where = "TRUE"
	if len(clauses) > 0 {
		where = strings.Join(clauses, " AND ")
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = SortDueDate
	}
	sortDir := f.SortDir
	if sortDir == "" {
		sortDir = SortAsc
	}
	// id is always the tiebreaker so P7 (deterministic ordering) holds.
	order = fmt.Sprintf("%s %s, id ASC", sortBy.column(), sortDir.sql())

	return where, order, args
}
