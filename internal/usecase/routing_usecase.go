package usecase

import (
	"context"
	"time"

	"radar/internal/domain/entity"
)

// RouteResult is the result of a single travel-time query. Approximate is
// set when no path was found on the road network and the result falls back
// to a great-circle estimate (spec §4.1) — callers may use it but must not
// cache it as ground truth.
type RouteResult struct {
	Source      entity.Coordinate `json:"source"`
	Target      entity.Coordinate `json:"target"`
	DistanceKm  float64           `json:"distance_km"`
	DurationMin float64           `json:"duration_min"`
	IsReachable bool              `json:"is_reachable"`
	Approximate bool              `json:"approximate"`
}

// OneToManyResult is the result of a one-to-many routing query.
type OneToManyResult struct {
	Source   entity.Coordinate   `json:"source"`
	Targets  []entity.Coordinate `json:"targets"`
	Results  []RouteResult       `json:"results"`
	Duration time.Duration       `json:"duration"`
}

// NodeID identifies a road-network graph node.
type NodeID int

// NodeInfo is a snapped road-network node.
type NodeInfo struct {
	ID       NodeID            `json:"id"`
	Location entity.Coordinate `json:"location"`
}

// RoutingUsecase is the road-network provider contract (spec §4.1): travel
// time between coordinates, a bulk one-to-many query, nearest-node lookup,
// and the preload/on-demand-graph lifecycle.
type RoutingUsecase interface {
	// TravelTimeMinutes returns the travel time in minutes from one
	// coordinate to another, honoring directed edges. On failure (no path,
	// either endpoint outside coverage) it falls back to a great-circle
	// estimate at entity.DefaultAvgSpeedKPH and reports approximate=true;
	// this is not an error.
	TravelTimeMinutes(ctx context.Context, from, to entity.Coordinate) (minutes float64, approximate bool, err error)

	// OneToMany calculates routes from one source to many targets.
	OneToMany(ctx context.Context, source entity.Coordinate, targets []entity.Coordinate) (*OneToManyResult, error)

	// FindNearestNode finds the nearest road network node to a coordinate.
	FindNearestNode(ctx context.Context, coord entity.Coordinate) (*NodeInfo, bool, error)

	// CalculateDistance calculates road network distance/duration between
	// two coordinates.
	CalculateDistance(ctx context.Context, source, target entity.Coordinate) (*RouteResult, error)

	// IsReady reports whether the preloaded graph is ready for queries.
	IsReady() bool
}
