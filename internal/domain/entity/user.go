// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account: someone who may authenticate against the
// admin surface (scoring-config hot-swap, zone reload). The dispatch core
// has no end-user-facing account model of its own — orders and vehicles
// are identified by caller-supplied IDs, not by a User.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the account.
	Email     string    // Login identifier.
	Name      string    // Display name.
	Role      Role      // Authorization role; gates RequireRole-protected routes.
	CreatedAt time.Time
	UpdatedAt time.Time
}
