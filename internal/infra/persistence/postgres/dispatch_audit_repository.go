package postgres

import (
	"context"

	"radar/internal/domain/entity"
	"radar/internal/domain/repository"
	"radar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// dispatchAuditRepository implements repository.DispatchAuditRepository.
type dispatchAuditRepository struct {
	db *gorm.DB
}

// NewDispatchAuditRepository is the constructor for dispatchAuditRepository.
func NewDispatchAuditRepository(db *gorm.DB) repository.DispatchAuditRepository {
	return &dispatchAuditRepository{db: db}
}

// RecordDecision inserts one append-only audit row.
func (r *dispatchAuditRepository) RecordDecision(ctx context.Context, record *entity.DispatchAuditRecord) error {
	auditM := fromDispatchAuditDomain(record)
	return r.db.WithContext(ctx).Create(auditM).Error
}

func fromDispatchAuditDomain(e *entity.DispatchAuditRecord) *model.DispatchAuditModel {
	return &model.DispatchAuditModel{
		ID:                 uuid.New(),
		OrderID:            e.OrderID,
		VehicleID:          e.VehicleID,
		Feasible:           e.Feasible,
		DistanceScore:      e.Score.DistanceScore,
		CapacityScore:      e.Score.CapacityScore,
		UrgencyScore:       e.Score.UrgencyScore,
		CompatibilityScore: e.Score.CompatibilityScore,
		PerformanceScore:   e.Score.PerformanceScore,
		InterferenceScore:  e.Score.InterferenceScore,
		Total:              e.Score.Total,
		FailureReason:      e.FailureReason,
		DecidedAt:          e.DecidedAt,
	}
}
