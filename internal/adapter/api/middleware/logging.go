package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/metrics"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
)

// instrumentedWriter wraps http.ResponseWriter so the audit event is emitted
// on the first body write, before any bytes reach the transport. Handlers
// that emit through several code paths still produce exactly one event.
type instrumentedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	emitted     bool
	emit        func(status int)
}

func (w *instrumentedWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *instrumentedWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.status = http.StatusOK
		w.wroteHeader = true
	}
	if !w.emitted {
		w.emitted = true
		w.emit(w.status)
	}
	return w.ResponseWriter.Write(b)
}

// Instrument is a middleware factory that records one HTTP audit event per
// completed request: method, path, status, duration, principal (or
// "anonymous"), plus non-empty route and query parameters as context. It
// never alters the response.
func Instrument(auditLog *audit.Logger, m *metrics.APIMetrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The auth middleware runs further down the chain; the holder
			// makes the principal it establishes visible here.
			hctx, holder := withPrincipalHolder(r.Context())
			r = r.WithContext(hctx)

			iw := &instrumentedWriter{ResponseWriter: w, status: http.StatusOK}
			iw.emit = func(status int) {
				duration := time.Since(start)
				user := holder.identity
				ctx := requestParams(r)

				if err := auditLog.HTTP(r.Method, r.URL.Path, status, duration, user, ctx); err != nil {
					logger.Error("failed to append http audit event", "error", err, "path", r.URL.Path)
				}
				if m != nil {
					m.RequestsTotal.WithLabelValues(r.Method, statusClass(status)).Inc()
				}
			}

			next.ServeHTTP(iw, r)

			// Bodyless responses never hit Write; record them on return.
			if !iw.emitted {
				iw.emitted = true
				iw.emit(iw.status)
			}
		})
	}
}

// requestParams collects non-empty chi route parameters and query parameters.
func requestParams(r *http.Request) map[string]any {
	params := make(map[string]any)

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			if val := rctx.URLParams.Values[i]; val != "" {
				params[key] = val
			}
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 && values[0] != "" {
			params[key] = values[0]
		}
	}

	if len(params) == 0 {
		return nil
	}
	return params
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}
