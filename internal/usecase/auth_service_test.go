package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain/mocks"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/util"
)

func newAuthService(repo *mocks.MockUserRepository) *AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, logger, "test-secret", time.Hour, 4)
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("Successful Signup", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		svc := newAuthService(repo)

		user, err := svc.Signup(context.Background(), "Ana", "Ana@School.EDU", "hunter2", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Email != "ana@school.edu" {
			t.Errorf("email not normalized: %q", user.Email)
		}
		if user.Role != domain.RoleStaff {
			t.Errorf("expected default role staff, got %q", user.Role)
		}
		if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
			t.Error("password was not hashed")
		}
		if !util.CheckPasswordHash("hunter2", user.PasswordHash) {
			t.Error("stored hash does not verify against the password")
		}
		if len(repo.Users) != 1 {
			t.Errorf("expected 1 stored user, got %d", len(repo.Users))
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		repo := &mocks.MockUserRepository{
			Users: []domain.User{{Email: "ana@school.edu"}},
		}
		svc := newAuthService(repo)

		_, err := svc.Signup(context.Background(), "Ana", "ana@school.edu", "hunter2", "")
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	makeRepo := func(t *testing.T) *mocks.MockUserRepository {
		t.Helper()
		hash, err := util.HashPassword("hunter2", 4)
		if err != nil {
			t.Fatalf("hash error: %v", err)
		}
		return &mocks.MockUserRepository{
			Users: []domain.User{{Email: "ana@school.edu", PasswordHash: hash}},
		}
	}

	t.Run("Successful Login", func(t *testing.T) {
		svc := newAuthService(makeRepo(t))

		token, user, err := svc.Login(context.Background(), "ana@school.edu", "hunter2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user == nil || user.Email != "ana@school.edu" {
			t.Fatalf("unexpected user: %+v", user)
		}

		claims, err := util.ValidateToken(token, "test-secret")
		if err != nil {
			t.Fatalf("issued token does not validate: %v", err)
		}
		if claims.Email != "ana@school.edu" {
			t.Errorf("claims email = %q", claims.Email)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svc := newAuthService(makeRepo(t))

		_, _, err := svc.Login(context.Background(), "ana@school.edu", "wrong")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Unknown Email", func(t *testing.T) {
		svc := newAuthService(makeRepo(t))

		_, _, err := svc.Login(context.Background(), "nobody@school.edu", "hunter2")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Repository Error", func(t *testing.T) {
		repo := &mocks.MockUserRepository{FindErr: errors.New("connection refused")}
		svc := newAuthService(repo)

		_, _, err := svc.Login(context.Background(), "ana@school.edu", "hunter2")
		if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected the repository error to surface, got %v", err)
		}
	})
}
