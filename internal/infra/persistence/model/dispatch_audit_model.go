package model

import (
	"time"

	"github.com/google/uuid"
)

// DispatchAuditModel is the GORM-specific struct for the append-only
// 'dispatch_audits' table. One row is written per dispatched order (single
// or batch-item), after the response has already been computed, for
// offline analysis of scoring decisions. It is historical decision
// logging, not fleet state.
type DispatchAuditModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID   string    `gorm:"type:varchar(255);index;not null"`
	VehicleID string    `gorm:"type:varchar(255);index"`
	Feasible  bool      `gorm:"not null"`

	DistanceScore      float64
	CapacityScore      float64
	UrgencyScore       float64
	CompatibilityScore float64
	PerformanceScore   float64
	InterferenceScore  float64
	Total              float64

	FailureReason string `gorm:"type:varchar(100)"`

	DecidedAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (DispatchAuditModel) TableName() string {
	return "dispatch_audits"
}
