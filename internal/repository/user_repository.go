package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/taskflow/core/internal/domain"
)

// UserRepository is the sole writer to the users table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository builds a UserRepository over the given pool.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Telephone, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with the given id, or domain.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, telephone, created_at FROM users WHERE id = $1
	`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail returns the user with the given email (case/whitespace
// insensitive per I6), or domain.ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, telephone, created_at
		FROM users WHERE lower(trim(email)) = lower(trim($1))
	`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Exists reports whether a user with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// List returns users whose full name or email contain the given (case
// insensitive) search term, paginated.
func (r *UserRepository) List(ctx context.Context, search string, page, pageSize int) ([]domain.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE $1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
	`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, email, telephone, created_at
		FROM users
		WHERE $1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, search, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Telephone, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts a brand new user.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (full_name, email, telephone)
		VALUES ($1, $2, $3)
		RETURNING id, full_name, email, telephone, created_at
	`, u.FullName, u.Email, u.Telephone)
	return scanUser(row)
}

// UpsertByEmail creates a user with the given email if absent, else updates
// its name/telephone (I6's natural-key upsert). A single conditional
// statement, not a read-then-write (DESIGN NOTES §9).
func (r *UserRepository) UpsertByEmail(ctx context.Context, fullName, email, telephone string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (full_name, email, telephone)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(trim(email))) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			telephone = EXCLUDED.telephone
		RETURNING id, full_name, email, telephone, created_at
	`, fullName, email, telephone)
	u, err := scanUser(row)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", email).Msg("failed to upsert user by email")
		return nil, err
	}
	return u, nil
}
