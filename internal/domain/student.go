package domain

import (
	"time"

	"github.com/google/uuid"
)

// Student is a record managed by the school staff.
type Student struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Course     string    `json:"course"`
	EnrolledAt time.Time `json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
}
