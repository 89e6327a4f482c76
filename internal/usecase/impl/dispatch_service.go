package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"radar/internal/domain/entity"
	domainerrors "radar/internal/domain/errors"
	"radar/internal/domain/repository"
	"radar/internal/domain/service"
	"radar/internal/infra/scoring"
	"radar/internal/usecase"
)

const defaultSingleDispatchBudget = 2 * time.Second

// dispatchService implements usecase.DispatchUsecase (spec §4.6): the
// seven-step single-order pipeline.
type dispatchService struct {
	geocoder     usecase.GeocoderUsecase
	zones        usecase.ZoneFilterUsecase
	scorer       usecase.ScorerUsecase
	sequencer    usecase.SequencerUsecase
	publisher    service.EventPublisher
	auditRepo    repository.DispatchAuditRepository
	scoringStore *scoring.Store
	fastModeK    int
	logger       *slog.Logger
}

// NewDispatchService is the constructor for dispatchService. The weight
// vector is read from scoringStore on every call rather than captured once,
// so an admin hot-swap (spec.md §9) takes effect on the next dispatch
// without restarting the service.
func NewDispatchService(
	geocoder usecase.GeocoderUsecase,
	zones usecase.ZoneFilterUsecase,
	scorer usecase.ScorerUsecase,
	sequencer usecase.SequencerUsecase,
	publisher service.EventPublisher,
	auditRepo repository.DispatchAuditRepository,
	scoringStore *scoring.Store,
	fastModeK int,
	logger *slog.Logger,
) usecase.DispatchUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if fastModeK <= 0 {
		fastModeK = 3
	}

	return &dispatchService{
		geocoder:     geocoder,
		zones:        zones,
		scorer:       scorer,
		sequencer:    sequencer,
		publisher:    publisher,
		auditRepo:    auditRepo,
		scoringStore: scoringStore,
		fastModeK:    fastModeK,
		logger:       logger,
	}
}

// publish emits a dispatch event for the outcome of an order, logging rather
// than failing the dispatch call if the publisher errors.
func (d *dispatchService) publish(ctx context.Context, orderID string, result *usecase.DispatchResult) {
	if d.publisher == nil {
		return
	}

	event := &service.DispatchEvent{
		OrderID: orderID,
		Kind:    service.EventOrderUnassigned,
	}
	if result.Assigned {
		event.Kind = service.EventOrderAssigned
		event.VehicleID = result.VehicleID
	} else {
		event.FailureReason = result.FailureReason
	}

	if err := d.publisher.PublishDispatchEvent(ctx, event); err != nil {
		d.logger.Warn("failed to publish dispatch event", "order_id", orderID, "error", err)
	}
}

// record writes an append-only audit row for this dispatch decision. It
// runs fire-and-forget on its own background context so a slow or failing
// write never blocks or fails the dispatch call itself.
func (d *dispatchService) record(orderID string, clock time.Time, result *usecase.DispatchResult) {
	if d.auditRepo == nil {
		return
	}

	audit := &entity.DispatchAuditRecord{
		OrderID:       orderID,
		FailureReason: result.FailureReason,
		DecidedAt:     clock,
	}
	if result.Assigned {
		audit.Feasible = true
		audit.VehicleID = result.VehicleID
		if result.WinningScore != nil {
			audit.Score = *result.WinningScore
		}
	}

	go func() {
		if err := d.auditRepo.RecordDecision(context.Background(), audit); err != nil {
			d.logger.Warn("failed to record dispatch audit", "order_id", orderID, "error", err)
		}
	}()
}

// finish publishes the event and records the audit row for a terminal
// dispatch outcome.
func (d *dispatchService) finish(ctx context.Context, orderID string, clock time.Time, result *usecase.DispatchResult) {
	d.publish(ctx, orderID, result)
	d.record(orderID, clock, result)
}

func (d *dispatchService) DispatchSingle(ctx context.Context, order entity.Order, fleet []entity.Vehicle, clock time.Time, opts usecase.DispatchOptions) (*usecase.DispatchResult, error) {
	budget := opts.TimeBudget
	if budget <= 0 {
		budget = defaultSingleDispatchBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// Step 1: resolve order location.
	resolved, err := d.resolveOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		result := &usecase.DispatchResult{FailureReason: domainerrors.ErrUnresolvedAddress.ErrorCode()}
		d.finish(ctx, order.OrderID, clock, result)

		return result, nil
	}
	order = *resolved

	// Step 2: zone pre-filter.
	candidates := d.zones.Filter(order.ResolvedLocation, fleet)

	// Step 3: hard filters.
	candidates = hardFilter(candidates, order.WeightKg)
	if len(candidates) == 0 {
		result := &usecase.DispatchResult{FailureReason: domainerrors.ErrNoCapacity.ErrorCode(), ResolvedOrder: &order}
		d.finish(ctx, order.OrderID, clock, result)

		return result, nil
	}

	// Step 4: score all surviving candidates (or top-K in fast mode).
	scores, fastModeSet, err := d.scoreCandidates(ctx, candidates, order, clock, opts)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		result := &usecase.DispatchResult{FailureReason: domainerrors.ErrTimeBudgetExceeded.ErrorCode(), ResolvedOrder: &order}
		d.finish(ctx, order.OrderID, clock, result)

		return result, nil
	}

	// Step 5: sort by total score descending, tie-break by vehicle-id.
	stableSortCandidates(scores)

	// Step 6: pick the winner. In fast mode, §4.3 restricts the final pick to
	// the top-K nearest-by-distance candidates (the ones scored with the full
	// model) unless every one of them is infeasible, since the rest were only
	// ever approximated by straight-line distance and must not outrank a
	// properly scored top-K candidate.
	winnerIdx := bestFeasibleIndex(scores, fastModeSet)
	if winnerIdx < 0 {
		result := &usecase.DispatchResult{
			FailureReason: domainerrors.ErrInfeasibleAll.ErrorCode(),
			AllScores:     scores,
			ResolvedOrder: &order,
		}
		d.finish(ctx, order.OrderID, clock, result)

		return result, nil
	}

	// Step 7: winner, plus its fully sequenced route after insertion.
	winner := scores[winnerIdx]
	winnerVehicle := findVehicle(candidates, winner.VehicleID)
	route, seqErr := d.routeAfterInsertion(ctx, winnerVehicle, order, clock)
	if seqErr != nil {
		return nil, seqErr
	}

	result := &usecase.DispatchResult{
		Assigned:      true,
		VehicleID:     winner.VehicleID,
		WinningScore:  &winner,
		Route:         route,
		AllScores:     scores,
		ResolvedOrder: &order,
	}
	d.finish(ctx, order.OrderID, clock, result)

	return result, nil
}

func (d *dispatchService) resolveOrder(ctx context.Context, order entity.Order) (*entity.Order, error) {
	if order.ResolvedLocation.Valid() {
		return &order, nil
	}
	if order.Address.Structured != nil && order.Address.Structured.Coordinate != nil && order.Address.Structured.Coordinate.Valid() {
		order.ResolvedLocation = *order.Address.Structured.Coordinate
		return &order, nil
	}

	coord, ok, err := d.geocoder.Forward(ctx, order.Address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	order.ResolvedLocation = coord

	return &order, nil
}

func hardFilter(vehicles []entity.Vehicle, weightKg float64) []entity.Vehicle {
	kept := make([]entity.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.CanAccept(weightKg) {
			kept = append(kept, v)
		}
	}

	return kept
}

func findVehicle(vehicles []entity.Vehicle, vehicleID string) entity.Vehicle {
	for _, v := range vehicles {
		if v.VehicleID == vehicleID {
			return v
		}
	}

	return entity.Vehicle{}
}

// scoreCandidates fans the per-candidate scoring calls out across a worker
// pool (spec §5's fan-out/fan-in model); completion order never influences
// the result since every candidate's score is collected by index before the
// stable sort runs.
func (d *dispatchService) scoreCandidates(ctx context.Context, candidates []entity.Vehicle, order entity.Order, clock time.Time, opts usecase.DispatchOptions) ([]entity.AssignmentScore, map[string]bool, error) {
	fastModeSet := map[string]bool{}
	if opts.FastMode {
		fastModeSet = d.topKByDistance(candidates, order, d.fastModeK)
	}

	// Snapshot once so every candidate in this request is scored against
	// the same weight vector, even if an admin swap lands mid-request.
	weights := d.scoringStore.Get()

	scores := make([]entity.AssignmentScore, len(candidates))
	errs := make([]error, len(candidates))

	var workerGroup sync.WaitGroup
	for i, vehicle := range candidates {
		workerGroup.Go(func() {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}

			fastApprox := opts.FastMode && !fastModeSet[vehicle.VehicleID]
			score, err := d.scorer.Score(ctx, usecase.ScoreCandidateInput{
				Vehicle:               vehicle,
				Order:                 order,
				Clock:                 clock,
				FastModeEuclideanOnly: fastApprox,
			}, weights)
			if err != nil {
				errs[i] = err
				return
			}
			scores[i] = *score
		})
	}
	workerGroup.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	return scores, fastModeSet, nil
}

// bestFeasibleIndex returns the index into scores (already sorted by Total
// descending) of the winning candidate, or -1 if nothing is feasible. When
// fastModeSet is non-empty it first looks for the best-scoring candidate
// among that top-K set — the only candidates scored with the full model —
// and only falls back to the overall best (which may include a straight-line
// approximated candidate) when every top-K candidate is infeasible.
func bestFeasibleIndex(scores []entity.AssignmentScore, fastModeSet map[string]bool) int {
	if len(fastModeSet) > 0 {
		for i, s := range scores {
			if fastModeSet[s.VehicleID] {
				if s.Total == 0 {
					break
				}

				return i
			}
		}
	}

	if len(scores) > 0 && scores[0].Total > 0 {
		return 0
	}

	return -1
}

// topKByDistance returns the set of vehicle-ids among the K closest to
// order.ResolvedLocation by straight-line distance (spec §4.3's fast-mode).
func (d *dispatchService) topKByDistance(candidates []entity.Vehicle, order entity.Order, k int) map[string]bool {
	type distPair struct {
		id   string
		dist float64
	}
	pairs := make([]distPair, len(candidates))
	for i, v := range candidates {
		pairs[i] = distPair{id: v.VehicleID, dist: entity.HaversineMeters(v.Location, order.ResolvedLocation)}
	}

	// simple selection of the k smallest, stable enough for test fixtures
	selected := map[string]bool{}
	for range min(k, len(pairs)) {
		minIdx := -1
		for i, p := range pairs {
			if selected[p.id] {
				continue
			}
			if minIdx == -1 || p.dist < pairs[minIdx].dist {
				minIdx = i
			}
		}
		if minIdx == -1 {
			break
		}
		selected[pairs[minIdx].id] = true
	}

	return selected
}

// routeAfterInsertion sequences the winning vehicle's committed orders plus
// the newly assigned order, using the same sequencer the feasibility
// evaluator used to decide the candidate was feasible in the first place.
func (d *dispatchService) routeAfterInsertion(ctx context.Context, vehicle entity.Vehicle, order entity.Order, clock time.Time) (*entity.Route, error) {
	stops := stopsFromOrders(vehicle.CurrentOrders)
	stops = append(stops, sequenceStopFromOrder(order))

	result, err := d.sequencer.Sequence(ctx, vehicle.Location, clock, stops, 0)
	if err != nil {
		return nil, err
	}

	return &result.Route, nil
}
