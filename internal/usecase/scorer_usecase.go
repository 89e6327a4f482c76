package usecase

import (
	"context"
	"time"

	"radar/internal/domain/entity"
)

// ScoreCandidateInput bundles everything ScorerUsecase needs to score one
// (vehicle, order) pair.
type ScoreCandidateInput struct {
	Vehicle entity.Vehicle
	Order   entity.Order
	Clock   time.Time

	// FastModeEuclideanOnly, when true, skips the feasibility call and
	// scores interference from straight-line deltas only (spec §4.3's
	// fast-mode approximation for candidates outside the top-K).
	FastModeEuclideanOnly bool
}

// ScorerUsecase turns a feasible (vehicle, order) candidate into the
// six-way sub-score table and weighted total (spec §4.3).
type ScorerUsecase interface {
	Score(ctx context.Context, in ScoreCandidateInput, weights entity.Weights) (*entity.AssignmentScore, error)
}
