package usecase

import (
	"context"

	"radar/internal/domain/entity"
)

// GeocoderUsecase resolves free-text or partially-structured addresses to
// coordinates, and the reverse. Forward lookups are rate-limited and cached
// by the implementation (spec §5's token-bucket geocoder limit); this
// interface only names the contract.
type GeocoderUsecase interface {
	// Forward resolves addr to a coordinate. ok is false when the address
	// could not be resolved (the dispatcher maps this to failure_reason
	// "unresolved-address").
	Forward(ctx context.Context, addr entity.OrderAddress) (coord entity.Coordinate, ok bool, err error)

	// Reverse resolves a coordinate back to a best-effort structured address.
	Reverse(ctx context.Context, coord entity.Coordinate) (*entity.Address, error)
}
