package usecase

import (
	"context"
	"time"

	"radar/internal/domain/entity"
)

// SequenceStop is one delivery to place into a route: the order identity,
// its location, its deadline, and its order-specific handling time beyond
// the fixed per-stop service time (spec §3's estimated_duration_min).
type SequenceStop struct {
	OrderID               string
	Location               entity.Coordinate
	Deadline               time.Time
	EstimatedDurationMin   float64
}

// SequenceResult is the sequencer's output: the ordered route and whether
// every stop in it meets its deadline.
type SequenceResult struct {
	Route    entity.Route
	Feasible bool

	// ViolatingOrderID names the earliest stop that misses its deadline,
	// when Feasible is false.
	ViolatingOrderID string
}

// SequencerUsecase is the route sequencer contract (spec §4.5): given a
// start location/clock and a set of stops, find the visiting order that
// minimizes total duration subject to every deadline, or — when no such
// order exists — the one with the fewest violations.
type SequencerUsecase interface {
	// Sequence orders stops starting from start at clock, honoring budget
	// as a wall-clock limit: the n≤8 exact path returns the best permutation
	// examined when it expires, and the n>8 heuristic path passes what is
	// left of it to the solver as a time limit. budget ≤ 0 uses the
	// 5-second default.
	Sequence(ctx context.Context, start entity.Coordinate, clock time.Time, stops []SequenceStop, budget time.Duration) (*SequenceResult, error)
}
