package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/metrics"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/util"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	holderKey    contextKey = "principalHolder"
)

const tokenVerification = "token_verification"

// principalHolder lets the instrumentation middleware, which wraps the
// request before authentication runs, observe the principal established
// further down the chain.
type principalHolder struct{ identity string }

func withPrincipalHolder(ctx context.Context) (context.Context, *principalHolder) {
	if h, ok := ctx.Value(holderKey).(*principalHolder); ok {
		return ctx, h
	}
	h := &principalHolder{identity: "anonymous"}
	return context.WithValue(ctx, holderKey, h), h
}

// Auth is a middleware factory that verifies the Bearer token on protected
// routes. Every verification, successful or not, is recorded as an AUTH audit
// event before the request is allowed through or rejected.
func Auth(jwtSecret string, auditLog *audit.Logger, m *metrics.APIMetrics, logger *slog.Logger) func(http.Handler) http.Handler {
	emit := func(identifier, result string, ctx map[string]any) {
		if err := auditLog.Auth(tokenVerification, identifier, result, ctx); err != nil {
			logger.Error("failed to append auth audit event", "error", err)
		}
		if m != nil {
			m.AuthVerificationsTotal.WithLabelValues(result).Inc()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				emit("unknown", "failure", map[string]any{
					"reason": "missing or malformed authorization header",
					"path":   r.URL.Path,
					"method": r.Method,
				})
				http.Error(w, "Unauthorized: bearer token required", http.StatusUnauthorized)
				return
			}

			claims, err := util.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				emit("unknown", "failure", map[string]any{
					"reason": err.Error(),
					"path":   r.URL.Path,
					"method": r.Method,
				})
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			emit(claims.Email, "success", map[string]any{
				"path":   r.URL.Path,
				"method": r.Method,
			})

			ctx := context.WithValue(r.Context(), principalKey, claims)
			if h, ok := ctx.Value(holderKey).(*principalHolder); ok {
				h.identity = claims.Email
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the verified claims stored by Auth, if any.
func PrincipalFrom(ctx context.Context) (*util.Claims, bool) {
	claims, ok := ctx.Value(principalKey).(*util.Claims)
	return claims, ok
}

// UserIdentity returns the authenticated principal's email, or "anonymous"
// for unauthenticated requests.
func UserIdentity(ctx context.Context) string {
	if claims, ok := PrincipalFrom(ctx); ok {
		return claims.Email
	}
	return "anonymous"
}
