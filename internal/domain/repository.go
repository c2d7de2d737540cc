package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence for accounts.
type UserRepository interface {
	// Create inserts a new user. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *User) error

	// FindByEmail returns the user with the given email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// StudentRepository defines persistence for student records.
type StudentRepository interface {
	Create(ctx context.Context, student *Student) error

	// FindByID returns the student with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)

	List(ctx context.Context) ([]Student, error)

	// Update persists changes to an existing student, or ErrNotFound.
	Update(ctx context.Context, student *Student) error

	// Delete removes a student, or ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
