package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
)

const uniqueViolation = "23505"

// UserRepository implements domain.UserRepository using PostgreSQL.
type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
	audit  *audit.Logger
}

// NewUserRepository creates a new instance of the PostgreSQL user repository.
func NewUserRepository(db *sql.DB, logger *slog.Logger, auditLog *audit.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger, audit: auditLog}
}

// Create inserts a new user, mapping a unique-email violation to ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, role, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		r.recordFailure("users.create", err)
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given email, or domain.ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.recordFailure("users.find_by_email", err)
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// recordFailure emits a DATABASE audit event for an unexpected query error.
// A broken audit sink on top of a broken query is surfaced via slog rather
// than masking the original error.
func (r *UserRepository) recordFailure(operation string, err error) {
	if aerr := r.audit.Database(operation, "failure", map[string]any{"error": err.Error()}); aerr != nil {
		r.logger.Error("failed to append database audit event", "error", aerr, "operation", operation)
	}
}
