package impl

import (
	"log/slog"

	"radar/internal/domain/entity"
	"radar/internal/infra/zone"
	"radar/internal/usecase"
)

// zoneFilterService implements usecase.ZoneFilterUsecase (spec §4.4) against
// a domain-configurable ZoneSet. The set is read from store on every call so
// an admin-triggered reload (config.Config.Zones's file, replaced through
// zone.Store.Reload) takes effect without a restart.
type zoneFilterService struct {
	store  *zone.Store
	logger *slog.Logger
}

// NewZoneFilterService is the constructor for zoneFilterService.
func NewZoneFilterService(store *zone.Store, logger *slog.Logger) usecase.ZoneFilterUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	return &zoneFilterService{store: store, logger: logger}
}

func (z *zoneFilterService) Filter(orderLocation entity.Coordinate, vehicles []entity.Vehicle) []entity.Vehicle {
	zones := z.store.Get()

	orderZone, ok := zones.Locate(orderLocation)
	if !ok {
		z.logger.Debug("order location outside every configured zone, filter disabled for this call")

		return vehicles
	}

	kept := make([]entity.Vehicle, 0, len(vehicles))
	for _, vehicle := range vehicles {
		vehicleZone, vehicleOK := zones.Locate(vehicle.Location)
		if !vehicleOK {
			// A vehicle outside every zone cannot be positively matched;
			// exclude it rather than silently keep an unmappable vehicle.
			continue
		}

		if zones.AdjacentOrEqual(orderZone, vehicleZone) {
			kept = append(kept, vehicle)
		}
	}

	return kept
}
