// Command dispatcher is the HTTP entrypoint for the dispatch core: account
// management plus the feasibility/scoring/sequencing pipeline that assigns
// orders to vehicles.
package main

import (
	"context"
	"log/slog"
	"os"

	"radar/config"
	"radar/internal/delivery"
	"radar/internal/delivery/http"
	"radar/internal/delivery/http/middleware"
	"radar/internal/delivery/http/router/handler"
	"radar/internal/domain/entity"
	"radar/internal/infra/auth"
	"radar/internal/infra/geocode"
	logs "radar/internal/infra/log"
	"radar/internal/infra/persistence/postgres"
	"radar/internal/infra/pubsub"
	"radar/internal/infra/routing/pmtiles"
	"radar/internal/infra/scoring"
	"radar/internal/infra/zone"
	"radar/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectDispatchDomain(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		pubsub.Module,
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewAuthRepository,
			postgres.NewTransactionManager,
			postgres.NewDispatchAuditRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
		),
	)
}

// injectDispatchDomain wires the road-network, zone, and geocoding providers
// that the dispatch usecases are built on, plus small adapters that extract
// a scorer weight vector and a fast-mode candidate cap out of config.Config.
func injectDispatchDomain() fx.Option {
	return fx.Options(
		fx.Provide(
			newRoutingConfig,
			newPMTilesConfig,
			newZonesConfig,
			newGeocoderConfig,
			newScoringStore,
			newFastModeK,
			zone.NewStore,
			geocode.New,
			// onDemandRouting backs impl.NewRoutingService's fallback for
			// coordinates the preloaded CH graph can't reach; named to avoid
			// colliding with NewRoutingService's own usecase.RoutingUsecase
			// result in the container.
			fx.Annotate(
				pmtiles.NewPMTilesRoutingService,
				fx.ResultTags(`name:"onDemandRouting"`),
			),
		),
	)
}

func newRoutingConfig(cfg *config.Config) *config.RoutingConfig {
	return cfg.Routing
}

func newPMTilesConfig(cfg *config.Config) *config.PMTilesConfig {
	return cfg.PMTiles
}

func newZonesConfig(cfg *config.Config) *config.ZonesConfig {
	return cfg.Zones
}

func newGeocoderConfig(cfg *config.Config) *config.GeocoderConfig {
	return cfg.Geocoder
}

// newScoringStore seeds the hot-swappable weight vector from config,
// falling back to entity.DefaultWeights when the operator hasn't
// configured one or configured an invalid (non-summing-to-1.00) vector.
func newScoringStore(cfg *config.Config) *scoring.Store {
	weights := entity.DefaultWeights()

	if cfg.Dispatch != nil {
		w := cfg.Dispatch.Weights
		configured := entity.Weights{
			Distance:      w.Distance,
			Capacity:      w.Capacity,
			Urgency:       w.Urgency,
			Compatibility: w.Compatibility,
			Performance:   w.Performance,
			Interference:  w.Interference,
		}
		if configured.Valid() {
			weights = configured
		}
	}

	return scoring.NewStore(weights)
}

func newFastModeK(cfg *config.Config) int {
	if cfg.Dispatch == nil {
		return 0
	}

	return cfg.Dispatch.FastModeK
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			fx.Annotate(
				impl.NewRoutingService,
				fx.ParamTags(``, `name:"onDemandRouting"`, ``),
			),
			impl.NewSequencerService,
			impl.NewFeasibilityService,
			impl.NewScorerService,
			impl.NewZoneFilterService,
			impl.NewDispatchService,
			impl.NewBatchDispatchService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewUserHandler,
			handler.NewTestHandler,
			handler.NewDispatchHandler,
			handler.NewAdminHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, d := range params.Deliveries {
		go func(d delivery.Delivery) {
			if err := d.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}(d)
	}
}
