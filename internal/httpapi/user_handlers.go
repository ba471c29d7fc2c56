package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/core/internal/service"
)

// UserHandlers implements the User endpoints of spec §6.1.
type UserHandlers struct {
	users *service.UserService
}

// NewUserHandlers builds UserHandlers over the given service.
func NewUserHandlers(users *service.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, r, "malformed request body")
		return
	}
	if req.FullName == "" {
		writeFieldValidationError(w, r, "fullName", "fullName is required")
		return
	}
	if req.Email == "" {
		writeFieldValidationError(w, r, "email", "email is required")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.FullName, req.Email, req.Telephone)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, r, "invalid user id")
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (h *UserHandlers) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	users, total, err := h.users.ListUsers(r.Context(), q.Get("search"), page, pageSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items := make([]userDTO, len(users))
	for i := range users {
		items[i] = toUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, struct {
		Items      []userDTO `json:"items"`
		TotalItems int       `json:"totalItems"`
	}{Items: items, TotalItems: total})
}
