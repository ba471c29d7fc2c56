package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/core/internal/domain"
	"github.com/taskflow/core/internal/repository"
	"github.com/taskflow/core/internal/service"
)

// TaskHandlers implements the Task endpoints of spec §6.1.
type TaskHandlers struct {
	tasks *service.TaskService
}

// NewTaskHandlers builds TaskHandlers over the given service.
func NewTaskHandlers(tasks *service.TaskService) *TaskHandlers {
	return &TaskHandlers{tasks: tasks}
}

func (h *TaskHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "malformed request body")
		return
	}
	if req.Title == "" {
		writeFieldValidationError(w, r, "title", "title is required")
		return
	}
	if req.Owner.Email == "" {
		writeFieldValidationError(w, r, "owner.email", "owner.email is required")
		return
	}

	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		writeFieldValidationError(w, r, "priority", "unknown priority")
		return
	}

	var status *domain.Status
	if req.Status != nil {
		s := domain.Status(*req.Status)
		status = &s
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDateUTC,
		Priority:    priority,
		Status:      status,
		Owner: service.UserInput{
			FullName:  req.Owner.FullName,
			Email:     req.Owner.Email,
			Telephone: req.Owner.Telephone,
		},
	}
	if req.Assignee != nil {
		in.Assignee = &service.UserInput{
			FullName:  req.Assignee.FullName,
			Email:     req.Assignee.Email,
			Telephone: req.Assignee.Telephone,
		}
	}

	task, _, _, err := h.tasks.CreateTask(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", encodeVersion(task.Version))
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

func (h *TaskHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid task id")
		return
	}
	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("ETag", encodeVersion(task.Version))
	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TaskFilter{}

	switch q.Get("scope") {
	case "owner":
		filter.Scope = repository.ScopeOwner
	case "assignee":
		filter.Scope = repository.ScopeAssignee
	}

	if ownerID := q.Get("ownerUserId"); ownerID != "" {
		id, err := uuid.Parse(ownerID)
		if err != nil {
			writeValidationError(w, r, "invalid ownerUserId")
			return
		}
		filter.Scope = repository.ScopeOwner
		filter.UserID = id
	} else if assigneeID := q.Get("assignedUserId"); assigneeID != "" {
		id, err := uuid.Parse(assigneeID)
		if err != nil {
			writeValidationError(w, r, "invalid assignedUserId")
			return
		}
		filter.Scope = repository.ScopeAssignee
		filter.UserID = id
	}

	if status := q.Get("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.StatusIn = append(filter.StatusIn, domain.Status(s))
			}
		}
	}
	if priority := q.Get("priority"); priority != "" {
		for _, p := range strings.Split(priority, ",") {
			if p = strings.TrimSpace(p); p != "" {
				filter.PriorityIn = append(filter.PriorityIn, domain.Priority(p))
			}
		}
	}
	if q.Get("overdueOnly") == "true" {
		filter.OverdueOnly = true
	}
	if reminderSent := q.Get("reminderSent"); reminderSent != "" {
		b := reminderSent == "true"
		filter.ReminderSent = &b
	}
	filter.Search = q.Get("search")

	if sortBy := q.Get("sortBy"); sortBy != "" {
		filter.SortBy = repository.SortKey(sortBy)
	}
	if sortDir := q.Get("sortDir"); sortDir != "" {
		filter.SortDir = repository.SortDir(sortDir)
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		filter.PageSize = pageSize
	}
	filter.NormalizePage()

	tasks, total, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items := make([]taskDTO, len(tasks))
	for i := range tasks {
		items[i] = toTaskDTO(&tasks[i])
	}

	writeJSON(w, http.StatusOK, taskListDTO{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalItems: total,
	})
}

func (h *TaskHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid task id")
		return
	}
	version, ok := requireIfMatch(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "malformed request body")
		return
	}
	if req.Title == "" {
		writeFieldValidationError(w, r, "title", "title is required")
		return
	}
	priority := domain.Priority(req.Priority)
	if !domain.ValidPriority(priority) {
		writeFieldValidationError(w, r, "priority", "unknown priority")
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDateUTC,
		Priority:    priority,
		Status:      domain.Status(req.Status),
		AssigneeID:  req.AssignedUserID,
	}

	updated, err := h.tasks.UpdateTask(r.Context(), id, in, version)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("ETag", encodeVersion(updated.Version))
	writeJSON(w, http.StatusOK, toTaskDTO(updated))
}

func (h *TaskHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid task id")
		return
	}
	version, ok := requireIfMatch(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "malformed request body")
		return
	}

	updated, err := h.tasks.UpdateTaskStatus(r.Context(), id, domain.Status(req.Status), version)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("ETag", encodeVersion(updated.Version))
	writeJSON(w, http.StatusOK, toTaskDTO(updated))
}

func (h *TaskHandlers) UpdateAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid task id")
		return
	}
	version, ok := requireIfMatch(w, r)
	if !ok {
		return
	}

	var req updateAssigneeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "malformed request body")
		return
	}

	updated, err := h.tasks.UpdateTaskAssignee(r.Context(), id, req.AssignedUserID, version)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("ETag", encodeVersion(updated.Version))
	writeJSON(w, http.StatusOK, toTaskDTO(updated))
}

func (h *TaskHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid task id")
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
