package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
)

// StudentRepository implements domain.StudentRepository using PostgreSQL.
type StudentRepository struct {
	db     *sql.DB
	logger *slog.Logger
	audit  *audit.Logger
}

// NewStudentRepository creates a new instance of the PostgreSQL student repository.
func NewStudentRepository(db *sql.DB, logger *slog.Logger, auditLog *audit.Logger) *StudentRepository {
	return &StudentRepository{db: db, logger: logger, audit: auditLog}
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	query := `INSERT INTO students (id, name, email, course, enrolled_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		student.ID, student.Name, student.Email, student.Course, student.EnrolledAt, student.CreatedAt)
	if err != nil {
		r.recordFailure("students.create", err)
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	query := `SELECT id, name, email, course, enrolled_at, created_at FROM students WHERE id = $1`

	var s domain.Student
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Email, &s.Course, &s.EnrolledAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.recordFailure("students.find_by_id", err)
		return nil, fmt.Errorf("failed to query student: %w", err)
	}
	return &s, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	query := `SELECT id, name, email, course, enrolled_at, created_at FROM students ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.recordFailure("students.list", err)
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Course, &s.EnrolledAt, &s.CreatedAt); err != nil {
			r.recordFailure("students.list", err)
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	query := `UPDATE students SET name = $2, email = $3, course = $4, enrolled_at = $5 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		student.ID, student.Name, student.Email, student.Course, student.EnrolledAt)
	if err != nil {
		r.recordFailure("students.update", err)
		return fmt.Errorf("failed to update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		r.recordFailure("students.delete", err)
		return fmt.Errorf("failed to delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StudentRepository) recordFailure(operation string, err error) {
	if aerr := r.audit.Database(operation, "failure", map[string]any{"error": err.Error()}); aerr != nil {
		r.logger.Error("failed to append database audit event", "error", aerr, "operation", operation)
	}
}
