// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"radar/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAuthNotFound is returned when an authentication method is not found.
var ErrAuthNotFound = errors.New("authentication method not found")

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	// CreateAuthentication persists a new email/password credential.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindAuthenticationByUserID looks up the credential belonging to a user.
	FindAuthenticationByUserID(ctx context.Context, userID uuid.UUID) (*entity.Authentication, error)
}
