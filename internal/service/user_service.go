package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskflow/core/internal/domain"
	"github.com/taskflow/core/internal/repository"
)

// UserService implements the User operations exposed directly by the API
// (creation and lookup; users are otherwise upserted by TaskService).
type UserService struct {
	users *repository.UserRepository
}

// NewUserService builds a UserService over the given repository.
func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser persists a brand new user.
func (s *UserService) CreateUser(ctx context.Context, fullName, email, telephone string) (*domain.User, error) {
	return s.users.Create(ctx, &domain.User{FullName: fullName, Email: email, Telephone: telephone})
}

// GetUser returns the user with the given id, or domain.ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// GetUserByEmail returns the user with the given email, or domain.ErrNotFound.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// ListUsers returns a page of users matching the search term.
func (s *UserService) ListUsers(ctx context.Context, search string, page, pageSize int) ([]domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.users.List(ctx, search, page, pageSize)
}
