package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/l3on4rd0-rajj/EduFlow-API/internal/adapter/api/middleware"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/domain"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/pkg/audit"
	"github.com/l3on4rd0-rajj/EduFlow-API/internal/usecase"
)

// StudentHandler handles CRUD over student records. Mutations are recorded as
// USER_ACTION audit events attributed to the authenticated principal.
type StudentHandler struct {
	students *usecase.StudentService
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(students *usecase.StudentService, auditLog *audit.Logger, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{students: students, audit: auditLog, logger: logger}
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list students", "error", err)
		respondError(w, http.StatusInternalServerError, "could not list students")
		return
	}
	if students == nil {
		students = []domain.Student{}
	}
	respondJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var student domain.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.students.Create(r.Context(), &student); err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create student", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create student")
		return
	}

	h.writeAudit(h.audit.UserAction("student_created", middleware.UserIdentity(r.Context()), map[string]any{
		"studentId": student.ID.String(),
		"name":      student.Name,
	}))

	respondJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		h.logger.Error("failed to fetch student", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "could not fetch student")
		return
	}
	respondJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	var student domain.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	student.ID = id

	if err := h.students.Update(r.Context(), &student); err != nil {
		switch {
		case errors.Is(err, usecase.ErrValidation):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			respondError(w, http.StatusNotFound, "student not found")
		default:
			h.logger.Error("failed to update student", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "could not update student")
		}
		return
	}

	h.writeAudit(h.audit.UserAction("student_updated", middleware.UserIdentity(r.Context()), map[string]any{
		"studentId": id.String(),
	}))

	respondJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	if err := h.students.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		h.logger.Error("failed to delete student", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "could not delete student")
		return
	}

	h.writeAudit(h.audit.UserAction("student_deleted", middleware.UserIdentity(r.Context()), map[string]any{
		"studentId": id.String(),
	}))

	w.WriteHeader(http.StatusNoContent)
}

func (h *StudentHandler) studentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid student id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *StudentHandler) writeAudit(err error) {
	if err != nil {
		h.logger.Error("failed to append audit event", "error", err)
	}
}
