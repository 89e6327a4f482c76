// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Authentication is an operator's email/password credential.
type Authentication struct {
	ID           uuid.UUID // The unique ID for this authentication record.
	UserID       uuid.UUID // Links this credential to the User it belongs to.
	PasswordHash string    // The bcrypt-hashed password.
	CreatedAt    time.Time
}
