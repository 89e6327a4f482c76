package usecase

import (
	"context"
	"time"

	"radar/internal/domain/entity"
)

// DispatchOptions tunes a single dispatch call (spec §4.6/§6).
type DispatchOptions struct {
	FastMode      bool
	MaxCandidates int
	TimeBudget    time.Duration
}

// DispatchResult is the outcome of one single-order dispatch attempt.
type DispatchResult struct {
	Assigned      bool
	VehicleID     string
	WinningScore  *entity.AssignmentScore
	Route         *entity.Route
	AllScores     []entity.AssignmentScore
	FailureReason string

	// ResolvedOrder is the order as geocoded during this dispatch attempt
	// (ResolvedLocation populated), when resolution succeeded. Callers that
	// advance fleet state across multiple dispatch calls for the same batch
	// (spec §4.7) must carry this forward rather than the caller's original,
	// pre-resolution order value.
	ResolvedOrder *entity.Order
}

// DispatchUsecase assigns one order to the best available vehicle in a
// fleet snapshot (spec §4.6).
type DispatchUsecase interface {
	DispatchSingle(ctx context.Context, order entity.Order, fleet []entity.Vehicle, clock time.Time, opts DispatchOptions) (*DispatchResult, error)
}

// BatchOrderResult is one order's outcome within a batch dispatch run.
type BatchOrderResult struct {
	OrderID string
	DispatchResult
}

// BatchDispatchOptions tunes a batch dispatch call (spec §4.7/§6).
type BatchDispatchOptions struct {
	PrioritySort bool
	FastMode     bool
	TimeBudget   time.Duration
}

// BatchDispatchSummary totals a batch run's outcomes.
type BatchDispatchSummary struct {
	Assigned           int
	Failed             int
	TimeBudgetExceeded bool
}

// BatchDispatchResult is the full outcome of one batch dispatch call.
type BatchDispatchResult struct {
	Results []BatchOrderResult
	Summary BatchDispatchSummary
}

// BatchDispatchUsecase drives DispatchUsecase sequentially against a single
// shared, mutating fleet under a wall-clock budget (spec §4.7).
type BatchDispatchUsecase interface {
	DispatchBatch(ctx context.Context, orders []entity.Order, fleet []entity.Vehicle, clock time.Time, opts BatchDispatchOptions) (*BatchDispatchResult, error)
}
