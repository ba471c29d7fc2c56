package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/taskflow/core/internal/domain"
	"github.com/taskflow/core/internal/repository"
	"github.com/taskflow/core/internal/service"
)

func newTestRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgx mock: %v", err)
	}
	t.Cleanup(pool.Close)

	taskSvc := service.NewTaskService(repository.NewTaskRepository(pool), repository.NewUserRepository(pool))
	userSvc := service.NewUserService(repository.NewUserRepository(pool))
	return NewRouter(taskSvc, userSvc, nil), pool
}

var taskCols = []string{
	"id", "title", "description", "due_date", "priority", "status", "owner_id", "assignee_id",
	"reminder_sent", "due_notified_at", "created_at", "updated_at", "version",
}

// TestCreateHappyPath covers scenario S1: a valid creation returns 201 with
// status Open, assignee defaulting to owner, and a non-empty version token.
func TestCreateHappyPath(t *testing.T) {
	router, pool := newTestRouter(t)

	owner := uuid.New()
	now := time.Now().UTC()
	userRows := pgxmock.NewRows([]string{"id", "full_name", "email", "telephone", "created_at"}).
		AddRow(owner, "A", "a@x.io", "+972501234567", now)
	pool.ExpectQuery(`INSERT INTO users`).WillReturnRows(userRows)

	taskID := uuid.New()
	dueDate := now.Add(24 * time.Hour)
	createdRows := pgxmock.NewRows(taskCols).
		AddRow(taskID, "T1", "desc", dueDate, domain.PriorityMedium, domain.StatusOpen, owner, &owner,
			false, nil, now, now, int64(1))
	pool.ExpectQuery(`INSERT INTO tasks`).WillReturnRows(createdRows)

	body, _ := json.Marshal(createTaskRequest{
		Title:       "T1",
		Description: "desc",
		DueDateUTC:  dueDate,
		Priority:    "Medium",
		Owner:       userRefDTO{FullName: "A", Email: "a@x.io", Telephone: "+972501234567"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp taskDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.StatusOpen) {
		t.Fatalf("expected status Open, got %s", resp.Status)
	}
	if resp.AssigneeID == nil || *resp.AssigneeID != owner {
		t.Fatalf("expected assignee to equal owner")
	}
	if resp.Version == "" {
		t.Fatalf("expected non-empty version token")
	}
}

// TestCreatePastDueRejected covers scenario S2.
func TestCreatePastDueRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(createTaskRequest{
		Title:      "T1",
		DueDateUTC: time.Now().UTC().Add(-24 * time.Hour),
		Priority:   "Medium",
		Owner:      userRefDTO{FullName: "A", Email: "a@x.io"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error.Code != "INVALID_OPERATION" {
		t.Fatalf("expected INVALID_OPERATION, got %s", resp.Error.Code)
	}
}

// TestUpdateOptimisticConflict covers scenario S3: two concurrent PUTs
// carrying the same If-Match version — the second must see 409.
func TestUpdateOptimisticConflict(t *testing.T) {
	router, pool := newTestRouter(t)

	id := uuid.New()
	owner := uuid.New()
	now := time.Now().UTC()
	dueDate := now.Add(time.Hour)

	findRows := pgxmock.NewRows(taskCols).
		AddRow(id, "T1", "", dueDate, domain.PriorityMedium, domain.StatusOpen, owner, nil, false, nil, now, now, int64(1))
	pool.ExpectQuery(`SELECT`).WithArgs(id).WillReturnRows(findRows)

	updatedRows := pgxmock.NewRows(taskCols).
		AddRow(id, "T2", "", dueDate, domain.PriorityMedium, domain.StatusOpen, owner, nil, false, nil, now, now, int64(2))
	pool.ExpectQuery(`UPDATE tasks SET`).WillReturnRows(updatedRows)

	body, _ := json.Marshal(updateTaskRequest{
		Title: "T2", DueDateUTC: dueDate, Priority: "Medium", Status: "Open",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/"+id.String(), bytes.NewReader(body))
	req.Header.Set("If-Match", encodeVersion(1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first PUT: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	findRows2 := pgxmock.NewRows(taskCols).
		AddRow(id, "T2", "", dueDate, domain.PriorityMedium, domain.StatusOpen, owner, nil, false, nil, now, now, int64(2))
	pool.ExpectQuery(`SELECT`).WithArgs(id).WillReturnRows(findRows2)

	emptyRows := pgxmock.NewRows(taskCols)
	pool.ExpectQuery(`UPDATE tasks SET`).WillReturnRows(emptyRows)

	req2 := httptest.NewRequest(http.MethodPut, "/api/v1/tasks/"+id.String(), bytes.NewReader(body))
	req2.Header.Set("If-Match", encodeVersion(1))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusConflict {
		t.Fatalf("second PUT: expected 409, got %d: %s", rec2.Code, rec2.Body.String())
	}
}
