package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
)

func newTestAudit(t *testing.T) (*audit.Logger, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := audit.New(dir, audit.WithConsole(io.Discard))
	if err != nil {
		t.Fatalf("audit.New() error = %v", err)
	}
	return l, dir
}

func readAuditSink(t *testing.T, dir, keyword string) string {
	t.Helper()
	name := fmt.Sprintf("%s-%s.log", keyword, time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read %s sink: %v", keyword, err)
	}
	return string(data)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInstrumentRecordsCompletedRequest(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Instrument(auditLog, nil, discardLogger()))
	r.Get("/x", func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(12 * time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not here"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != "not here" {
		t.Errorf("middleware altered the response body: %q", rec.Body.String())
	}

	content := readAuditSink(t, dir, "http")
	if got := strings.Count(content, "\n"); got != 1 {
		t.Fatalf("expected exactly 1 http record, got %d: %q", got, content)
	}
	if !strings.Contains(content, "GET /x 404") {
		t.Errorf("record is missing method/path/status: %q", content)
	}

	m := regexp.MustCompile(`\((\d+)ms\)`).FindStringSubmatch(content)
	if m == nil {
		t.Fatalf("record is missing a duration: %q", content)
	}
	if ms, _ := strconv.Atoi(m[1]); ms < 12 {
		t.Errorf("duration = %dms, want >= 12", ms)
	}
	if !strings.Contains(content, "user=anonymous") {
		t.Errorf("expected anonymous principal, got %q", content)
	}
}

func TestInstrumentEmitsOnceForMultipleWrites(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Instrument(auditLog, nil, discardLogger()))
	r.Get("/chunks", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("part one "))
		_, _ = w.Write([]byte("part two"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chunks", nil))

	content := readAuditSink(t, dir, "http")
	if got := strings.Count(content, "\n"); got != 1 {
		t.Errorf("expected exactly 1 record for a multi-write handler, got %d", got)
	}
}

func TestInstrumentRecordsBodylessResponse(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Instrument(auditLog, nil, discardLogger()))
	r.Delete("/things/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/things/42", nil))

	content := readAuditSink(t, dir, "http")
	if !strings.Contains(content, "DELETE /things/42 204") {
		t.Errorf("expected a record for the bodyless response, got %q", content)
	}
	if !strings.Contains(content, `"id":"42"`) {
		t.Errorf("expected the route param in context, got %q", content)
	}
}

func TestInstrumentIncludesQueryParams(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Instrument(auditLog, nil, discardLogger()))
	r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?course=math&empty=", nil))

	content := readAuditSink(t, dir, "http")
	if !strings.Contains(content, `"course":"math"`) {
		t.Errorf("expected query param in context, got %q", content)
	}
	if strings.Contains(content, "empty") {
		t.Errorf("empty query params should be omitted, got %q", content)
	}
}

func TestInstrumentSeesAuthenticatedPrincipal(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Instrument(auditLog, nil, discardLogger()))
	r.Route("/api/students", func(r chi.Router) {
		r.Use(Auth(testSecret, auditLog, nil, discardLogger()))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte("[]"))
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/students/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "staff@school.edu", time.Hour))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	content := readAuditSink(t, dir, "http")
	if !strings.Contains(content, "user=staff@school.edu") {
		t.Errorf("expected the authenticated principal in the http record, got %q", content)
	}
}

func TestRecoveryLogsPanicAndReturns500(t *testing.T) {
	auditLog, dir := newTestAudit(t)

	r := chi.NewRouter()
	r.Use(Recovery(auditLog, discardLogger()))
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.RemoteAddr = "203.0.113.9:51000"
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	content := readAuditSink(t, dir, "errors")
	if !strings.Contains(content, "[GET /boom] kaboom") {
		t.Errorf("expected panic message in record, got %q", content)
	}
	if !strings.Contains(content, "goroutine") {
		t.Errorf("expected a stack trace in record, got %q", content)
	}
	if !strings.Contains(content, `"ip":"203.0.113.9"`) {
		t.Errorf("expected remote address in context, got %q", content)
	}
	if !strings.Contains(content, `"userId":"anonymous"`) {
		t.Errorf("expected anonymous principal in context, got %q", content)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"plain remote addr", "203.0.113.9:51000", "", "203.0.113.9"},
		{"forwarded header wins", "10.0.0.1:443", "198.51.100.7", "198.51.100.7"},
		{"first forwarded hop", "10.0.0.1:443", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"forwarded hops with padding", "10.0.0.1:443", "203.0.113.9 , 10.0.0.2", "203.0.113.9"},
		{"single padded forwarded value", "10.0.0.1:443", " 203.0.113.9 ", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
