package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/taskflow/core/internal/domain"
)

// TaskRepository is the sole writer to the tasks table; it enforces the
// version-token concurrency protocol on every mutation (spec §4.1).
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository builds a TaskRepository over the given pool.
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id, title, description, due_date, priority, status, owner_id, assignee_id,
	reminder_sent, due_notified_at, created_at, updated_at, version
`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status,
		&t.OwnerID, &t.AssigneeID, &t.ReminderSent, &t.DueNotifiedAt,
		&t.CreatedAt, &t.UpdatedAt, &t.Version,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByID returns the task with the given id, or domain.ErrNotFound.
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tasks matching filter, paginated, and the total item count
// across all pages (P6).
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, int, error) {
	filter.NormalizePage()
	where, order, args := filter.build(1)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tasks WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPlaceholder := len(args) + 1
	offsetPlaceholder := len(args) + 2
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, order, limitPlaceholder, offsetPlaceholder)

	offset := (filter.Page - 1) * filter.PageSize
	queryArgs := append(append([]any{}, args...), filter.PageSize, offset)

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Create inserts a new task, assigning a fresh version.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (
			title, description, due_date, priority, status, owner_id, assignee_id,
			reminder_sent, due_notified_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, 1)
		RETURNING `+taskColumns, t.Title, t.Description, t.DueDate, t.Priority, t.Status,
		t.OwnerID, t.AssigneeID, t.ReminderSent)
	return scanTask(row)
}

// UpdateIfVersion updates all mutable fields of t, refreshing updated_at
// and version, only if the stored version equals expectedVersion. This is
// a single atomic conditional write — no read-then-write race window
// (DESIGN NOTES §9).
func (r *TaskRepository) UpdateIfVersion(ctx context.Context, t *domain.Task, expectedVersion int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE tasks SET
			title = $1,
			description = $2,
			due_date = $3,
			priority = $4,
			status = $5,
			assignee_id = $6,
			updated_at = now(),
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING `+taskColumns,
		t.Title, t.Description, t.DueDate, t.Priority, t.Status, t.AssigneeID,
		t.ID, expectedVersion)

	updated, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConcurrencyConflict
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task unconditionally (no version check — deletion is
// absolute, per spec §3 Lifecycle). Returns domain.ErrNotFound if absent.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimDue atomically marks up to batchSize overdue, unclaimed,
// non-terminal tasks as claimed at `now`, returning the number claimed.
// The race-freedom of this statement against concurrent scanner instances
// rests on the conditional due_notified_at IS NULL subquery being
// evaluated inside the same statement as the UPDATE, combined with
// FOR UPDATE SKIP LOCKED so two scanners partition disjoint batches
// instead of serializing on each other's in-flight transaction
// (DESIGN NOTES §9; SPEC_FULL.md §4.1).
func (r *TaskRepository) ClaimDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET due_notified_at = $1
		WHERE id IN (
			SELECT id FROM tasks
			WHERE due_date < $1
			  AND due_notified_at IS NULL
			  AND status NOT IN ('Completed', 'Cancelled')
			ORDER BY due_date ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`, now, batchSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("claimDue failed")
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ClaimedRow is a lightweight projection of a just-claimed task, enough to
// build a TaskDueV1 event without holding a cursor across the claim.
type ClaimedRow struct {
	ID      uuid.UUID
	Title   string
	DueDate time.Time
}

// SelectClaimedAt returns the rows whose due_notified_at equals exactly the
// marker just used by ClaimDue.
func (r *TaskRepository) SelectClaimedAt(ctx context.Context, claimedAt time.Time) ([]ClaimedRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, due_date FROM tasks WHERE due_notified_at = $1
	`, claimedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClaimedRow
	for rows.Next() {
		var c ClaimedRow
		if err := rows.Scan(&c.ID, &c.Title, &c.DueDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
