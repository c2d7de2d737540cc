package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
)

// Recovery is the terminal failure handler. It records one ERROR audit event
// for a panicking handler, with the panic message, stack trace, and the
// request identity, then answers 500. Installed outermost so every failure
// passes through it; the failure is never silently dropped.
func Recovery(auditLog *audit.Logger, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hctx, holder := withPrincipalHolder(r.Context())
			r = r.WithContext(hctx)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				msg := fmt.Sprintf("[%s %s] %v", r.Method, r.URL.Path, rec)
				e := audit.Event{
					Category:  audit.CategoryError,
					Message:   msg,
					ErrDetail: fmt.Sprintf("%v", rec),
					Stack:     string(debug.Stack()),
					Context: map[string]any{
						"userId": holder.identity,
						"path":   r.URL.Path,
						"method": r.Method,
						"ip":     ClientIP(r),
					},
				}
				if err := auditLog.Write(e); err != nil {
					logger.Error("failed to append error audit event", "error", err, "path", r.URL.Path)
				}

				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the source IP of a request, honoring X-Forwarded-For when
// a reverse proxy sits in front of the server.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
