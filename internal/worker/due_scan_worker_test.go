package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/taskflow/core/internal/broker"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []broker.TaskDueV1
}

func (f *fakePublisher) PublishTaskDue(ctx context.Context, evt broker.TaskDueV1) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

// TestDueScanWorkerClaimsAndPublishesExactlyEligibleTasks covers the
// scanner side of scenario S5: when the claim reports two rows, the tick
// selects those two rows and publishes exactly one event per row. The
// exclusion of terminal tasks happens in ClaimDue's SQL, which the mock
// stands in for; it is not exercised here.
func TestDueScanWorkerClaimsAndPublishesExactlyEligibleTasks(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	pub := &fakePublisher{}
	w := NewDueScanWorker(pool, pub, 15, 10)

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	pool.ExpectQuery(`SELECT EXISTS`).WillReturnRows(existsRows)

	pool.ExpectExec(`UPDATE tasks SET due_notified_at`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	t1, t2 := uuid.New(), uuid.New()
	due := time.Now().UTC().Add(-time.Minute)
	claimedRows := pgxmock.NewRows([]string{"id", "title", "due_date"}).
		AddRow(t1, "Task 1", due).
		AddRow(t2, "Task 2", due)
	pool.ExpectQuery(`SELECT id, title, due_date FROM tasks WHERE due_notified_at`).WillReturnRows(claimedRows)

	w.tick(context.Background())

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.events))
	}
}

// TestDueScanWorkerSkipsTickWhenTasksTableAbsent covers the cold-start
// tolerance described in spec §4.4 step 2.
func TestDueScanWorkerSkipsTickWhenTasksTableAbsent(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	defer pool.Close()

	pub := &fakePublisher{}
	w := NewDueScanWorker(pool, pub, 15, 10)

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	pool.ExpectQuery(`SELECT EXISTS`).WillReturnRows(existsRows)

	w.tick(context.Background())

	if len(pub.events) != 0 {
		t.Fatalf("expected no events published, got %d", len(pub.events))
	}
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
