package entity

import "time"

// DispatchAuditRecord is one persisted dispatch decision: the winning (or
// best-attempted) score breakdown for a single order, written after the
// dispatch response has already been computed. It exists for offline
// analysis of scoring outcomes, not for reconstructing fleet state.
type DispatchAuditRecord struct {
	OrderID       string
	VehicleID     string
	Feasible      bool
	Score         AssignmentScore
	FailureReason string
	DecidedAt     time.Time
}
