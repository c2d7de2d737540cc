package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository for testing.
type MockUserRepository struct {
	mu        sync.Mutex
	Users     []domain.User
	CreateErr error
	FindErr   error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, u := range m.Users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	m.Users = append(m.Users, *user)
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for i := range m.Users {
		if m.Users[i].Email == email {
			u := m.Users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockStudentRepository is a mock implementation of domain.StudentRepository for testing.
type MockStudentRepository struct {
	mu        sync.Mutex
	Students  []domain.Student
	CreateErr error
	FindErr   error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

func (m *MockStudentRepository) Create(ctx context.Context, student *domain.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Students = append(m.Students, *student)
	return nil
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for i := range m.Students {
		if m.Students[i].ID == id {
			s := m.Students[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockStudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Student, len(m.Students))
	copy(out, m.Students)
	return out, nil
}

func (m *MockStudentRepository) Update(ctx context.Context, student *domain.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Students {
		if m.Students[i].ID == student.ID {
			m.Students[i] = *student
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.Students {
		if m.Students[i].ID == id {
			m.Students = append(m.Students[:i], m.Students[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
