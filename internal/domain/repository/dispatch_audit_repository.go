// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"radar/internal/domain/entity"
)

// DispatchAuditRepository records dispatch decisions for offline analysis.
// Writes are append-only and fire-and-forget from the dispatch usecase's
// perspective: a failure to record an audit row never fails the dispatch
// call itself.
type DispatchAuditRepository interface {
	// RecordDecision persists one dispatch decision.
	RecordDecision(ctx context.Context, record *entity.DispatchAuditRecord) error
}
