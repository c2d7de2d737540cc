package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/util"
)

// AuthService handles account signup and credential-based login.
type AuthService struct {
	users      domain.UserRepository
	logger     *slog.Logger
	jwtSecret  string
	jwtExpiry  time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, logger *slog.Logger, jwtSecret string, jwtExpiry time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		logger:     logger,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new account with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = domain.RoleStaff
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", email)
		return nil, err
	}

	return user, nil
}

// Login validates credentials and returns a signed JWT for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !util.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "email", email)
		return "", nil, err
	}

	return token, user, nil
}
