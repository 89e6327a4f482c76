package usecase

import "radar/internal/domain/entity"

// ZoneFilterUsecase is the geographic pre-filter (spec §4.4): discard
// vehicles that are demonstrably far from the order before any scoring.
type ZoneFilterUsecase interface {
	// Filter returns the subset of vehicles whose zone equals or is adjacent
	// to orderLocation's zone. If orderLocation falls outside every
	// configured zone, the filter is disabled for the call and vehicles is
	// returned unchanged.
	Filter(orderLocation entity.Coordinate, vehicles []entity.Vehicle) []entity.Vehicle
}
