package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/api/middleware"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/metrics"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/loginguard"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/usecase"
)

// AuthHandler handles signup and login. The login endpoint consults the
// per-IP attempt guard before credentials are ever checked.
type AuthHandler struct {
	auth    *usecase.AuthService
	guard   *loginguard.Guard
	audit   *audit.Logger
	metrics *metrics.APIMetrics
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, guard *loginguard.Guard, auditLog *audit.Logger, m *metrics.APIMetrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, guard: guard, audit: auditLog, metrics: m, logger: logger}
}

type signupRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Signup registers a new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("signup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	h.writeAudit(h.audit.Success("account created", map[string]any{
		"userId": user.ID.String(),
		"email":  user.Email,
	}))

	respondJSON(w, http.StatusCreated, user)
}

// Login authenticates credentials, guarded by the per-IP throttle: blocked
// IPs are rejected with the remaining cooldown before any credential check.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)

	if d := h.guard.Allow(ip); !d.Allowed {
		minutes := int(d.RetryAfter / time.Minute)
		h.writeAudit(h.audit.Warn("login blocked by attempt throttle", map[string]any{
			"ip":               ip,
			"retryAfterMinute": minutes,
		}))
		if h.metrics != nil {
			h.metrics.LoginBlockedTotal.Inc()
		}
		respondError(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many failed login attempts, try again in %d minute(s)", minutes))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			remaining := h.guard.RecordFailure(ip)
			h.writeAudit(h.audit.Warn("failed login attempt", map[string]any{
				"ip":                ip,
				"email":             req.Email,
				"attemptsRemaining": remaining,
			}))
			h.writeAudit(h.audit.Auth("login", req.Email, "failure", map[string]any{"ip": ip}))
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	h.guard.Reset(ip)
	h.writeAudit(h.audit.Auth("login", user.Email, "success", map[string]any{"ip": ip}))

	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) writeAudit(err error) {
	if err != nil {
		h.logger.Error("failed to append audit event", "error", err)
	}
}
