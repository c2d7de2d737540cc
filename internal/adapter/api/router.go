package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/api/handler"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/api/middleware"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/metrics"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/config"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/loginguard"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the API server.
// Recovery sits outermost as the terminal failure handler; the instrumentation
// middleware observes every request inside it.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	auditLog *audit.Logger,
	m *metrics.APIMetrics,
	guard *loginguard.Guard,
	authService *usecase.AuthService,
	studentService *usecase.StudentService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(auditLog, logger))
	r.Use(middleware.Instrument(auditLog, m, logger))

	authHandler := handler.NewAuthHandler(authService, guard, auditLog, m, logger)
	studentHandler := handler.NewStudentHandler(studentService, auditLog, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/students", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, auditLog, m, logger))
			r.Get("/", studentHandler.List)
			r.Post("/", studentHandler.Create)
			r.Get("/{id}", studentHandler.Get)
			r.Put("/{id}", studentHandler.Update)
			r.Delete("/{id}", studentHandler.Delete)
		})
	})

	return r
}
