package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
)

// ErrValidation is returned for a student payload missing required fields.
var ErrValidation = errors.New("name and email are required")

// StudentService handles CRUD over student records.
type StudentService struct {
	students domain.StudentRepository
	logger   *slog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(students domain.StudentRepository, logger *slog.Logger) *StudentService {
	return &StudentService{students: students, logger: logger}
}

// Create validates and persists a new student.
func (s *StudentService) Create(ctx context.Context, student *domain.Student) error {
	student.Name = strings.TrimSpace(student.Name)
	student.Email = strings.ToLower(strings.TrimSpace(student.Email))
	if student.Name == "" || student.Email == "" {
		return ErrValidation
	}

	student.ID = uuid.New()
	student.CreatedAt = time.Now().UTC()
	if student.EnrolledAt.IsZero() {
		student.EnrolledAt = student.CreatedAt
	}

	return s.students.Create(ctx, student)
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return s.students.FindByID(ctx, id)
}

// List returns all students.
func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

// Update applies changes to an existing student.
func (s *StudentService) Update(ctx context.Context, student *domain.Student) error {
	student.Name = strings.TrimSpace(student.Name)
	student.Email = strings.ToLower(strings.TrimSpace(student.Email))
	if student.Name == "" || student.Email == "" {
		return ErrValidation
	}

	return s.students.Update(ctx, student)
}

// Delete removes a student by ID.
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.students.Delete(ctx, id)
}
