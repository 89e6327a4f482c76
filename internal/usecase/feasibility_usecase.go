package usecase

import (
	"context"
	"time"

	"radar/internal/domain/entity"
)

// FeasibilityResult is the evaluator's output (spec §4.2): whether the
// candidate insertion holds every deadline, the two durations the scorer's
// interference sub-score needs, and — when infeasible — which committed
// order would be the first to miss its deadline.
type FeasibilityResult struct {
	Feasible             bool
	BaselineDurationMin  float64
	WithNewDurationMin   float64
	ViolatingOrderID     string
	EstimatedArrivalMin  float64
	Reasoning            []string
}

// FeasibilityUsecase decides whether inserting a new order into a vehicle's
// committed work keeps every deadline satisfied (spec §4.2).
type FeasibilityUsecase interface {
	// Evaluate simulates vehicle's complete route with newOrder inserted at
	// its best position, as of clock, and reports feasibility plus the two
	// route durations used by the interference sub-score.
	Evaluate(ctx context.Context, vehicle entity.Vehicle, newOrder entity.Order, clock time.Time) (*FeasibilityResult, error)
}
