package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"radar/internal/domain/entity"
	"radar/internal/usecase"
)

// feasibilityService implements usecase.FeasibilityUsecase (spec §4.2): the
// sequencer is the authority on insertion order, the evaluator just reads
// off the two durations and the first violation it reports.
type feasibilityService struct {
	sequencer usecase.SequencerUsecase
	routing   usecase.RoutingUsecase
	logger    *slog.Logger
}

// NewFeasibilityService is the constructor for feasibilityService.
func NewFeasibilityService(sequencer usecase.SequencerUsecase, routing usecase.RoutingUsecase, logger *slog.Logger) usecase.FeasibilityUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	return &feasibilityService{sequencer: sequencer, routing: routing, logger: logger}
}

func (f *feasibilityService) Evaluate(ctx context.Context, vehicle entity.Vehicle, newOrder entity.Order, clock time.Time) (*usecase.FeasibilityResult, error) {
	if len(vehicle.CurrentOrders) == 0 {
		return f.evaluateEmptyFleet(ctx, vehicle, newOrder, clock)
	}

	return f.evaluateWithCommitted(ctx, vehicle, newOrder, clock)
}

// evaluateEmptyFleet handles spec §4.2 step 1: a single leg, current
// location -> new order; feasibility reduces to ETA <= deadline.
func (f *feasibilityService) evaluateEmptyFleet(ctx context.Context, vehicle entity.Vehicle, newOrder entity.Order, clock time.Time) (*usecase.FeasibilityResult, error) {
	minutes, _, err := f.routing.TravelTimeMinutes(ctx, vehicle.Location, newOrder.ResolvedLocation)
	if err != nil {
		return nil, err
	}

	withNew := minutes + entity.ServiceTimeMin + newOrder.EstimatedDurationMin
	eta := clock.Add(time.Duration(withNew * float64(time.Minute)))
	feasible := !eta.After(newOrder.Deadline)

	result := &usecase.FeasibilityResult{
		Feasible:            feasible,
		BaselineDurationMin: 0,
		WithNewDurationMin:  withNew,
		EstimatedArrivalMin: withNew,
	}

	if !feasible {
		result.ViolatingOrderID = newOrder.OrderID
		result.Reasoning = []string{fmt.Sprintf("order %s would arrive at %s, after its deadline %s", newOrder.OrderID, eta.Format(time.RFC3339), newOrder.Deadline.Format(time.RFC3339))}
	} else {
		result.Reasoning = []string{fmt.Sprintf("order %s fits with no committed orders, ETA %s", newOrder.OrderID, eta.Format(time.RFC3339))}
	}

	return result, nil
}

// evaluateWithCommitted handles spec §4.2 steps 2-4: ask the sequencer for
// the best insertion of committed ∪ {new}, and separately for committed
// alone, to get the two durations the interference sub-score needs.
func (f *feasibilityService) evaluateWithCommitted(ctx context.Context, vehicle entity.Vehicle, newOrder entity.Order, clock time.Time) (*usecase.FeasibilityResult, error) {
	baselineStops := stopsFromOrders(vehicle.CurrentOrders)
	baseline, err := f.sequencer.Sequence(ctx, vehicle.Location, clock, baselineStops, 0)
	if err != nil {
		return nil, err
	}

	combinedStops := append(stopsFromOrders(vehicle.CurrentOrders), sequenceStopFromOrder(newOrder))
	combined, err := f.sequencer.Sequence(ctx, vehicle.Location, clock, combinedStops, 0)
	if err != nil {
		return nil, err
	}

	result := &usecase.FeasibilityResult{
		Feasible:            combined.Feasible,
		BaselineDurationMin: baseline.Route.TotalDurationMin,
		WithNewDurationMin:  combined.Route.TotalDurationMin,
	}

	for _, stop := range combined.Route.Stops {
		if stop.OrderID == newOrder.OrderID {
			result.EstimatedArrivalMin = stop.ETA.Sub(clock).Minutes()

			break
		}
	}

	switch {
	case combined.Feasible:
		// Spec §4.2 step 4: even when the baseline alone is infeasible, a
		// feasible combined sequence is accepted — it does not make an
		// already-broken situation worse.
		if !baseline.Feasible {
			result.Reasoning = []string{fmt.Sprintf("baseline route was already infeasible (order %s); inserting %s still meets every deadline", baseline.ViolatingOrderID, newOrder.OrderID)}
		} else {
			result.Reasoning = []string{fmt.Sprintf("order %s inserted with every deadline met", newOrder.OrderID)}
		}
	default:
		result.ViolatingOrderID = combined.ViolatingOrderID
		result.Reasoning = []string{fmt.Sprintf("inserting order %s would cause order %s to miss its deadline", newOrder.OrderID, combined.ViolatingOrderID)}
	}

	return result, nil
}

func stopsFromOrders(orders []entity.Order) []usecase.SequenceStop {
	stops := make([]usecase.SequenceStop, len(orders))
	for i, o := range orders {
		stops[i] = sequenceStopFromOrder(o)
	}

	return stops
}

func sequenceStopFromOrder(o entity.Order) usecase.SequenceStop {
	return usecase.SequenceStop{
		OrderID:              o.OrderID,
		Location:             o.ResolvedLocation,
		Deadline:             o.Deadline,
		EstimatedDurationMin: o.EstimatedDurationMin,
	}
}
