package impl

import (
	"context"
	"log/slog"
	"time"

	"radar/internal/domain/entity"
	"radar/internal/usecase"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/tsp"
	"github.com/pkg/errors"
)

const (
	exactSequenceMaxN     = 8
	defaultSequenceBudget = 5 * time.Second
)

// sequencerService implements usecase.SequencerUsecase (spec §4.5): exact
// permutation search for small stop sets, a TSP-heuristic fallback beyond
// that, both driven by the road-network provider for real leg durations.
type sequencerService struct {
	routing usecase.RoutingUsecase
	logger  *slog.Logger
}

// NewSequencerService is the constructor for sequencerService.
func NewSequencerService(routing usecase.RoutingUsecase, logger *slog.Logger) usecase.SequencerUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	return &sequencerService{routing: routing, logger: logger}
}

func (s *sequencerService) Sequence(ctx context.Context, start entity.Coordinate, clock time.Time, stops []usecase.SequenceStop, budget time.Duration) (*usecase.SequenceResult, error) {
	if budget <= 0 {
		budget = defaultSequenceBudget
	}

	if len(stops) == 0 {
		return &usecase.SequenceResult{
			Route: entity.Route{
				Stops:     []entity.Stop{{OrderID: entity.StartStopID, Location: start, ETA: clock, OnTime: true, IsStart: true}},
				AllOnTime: true,
			},
			Feasible: true,
		}, nil
	}

	deadline := time.Now().Add(budget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if len(stops) <= exactSequenceMaxN {
		return s.sequenceExact(ctx, start, clock, stops)
	}

	return s.sequenceHeuristic(ctx, start, clock, stops)
}

// sequenceExact enumerates every permutation (spec §4.5: n ≤ 8), picking the
// minimum-duration one that satisfies every deadline; absent a feasible
// permutation, the one with the fewest violations wins.
func (s *sequencerService) sequenceExact(ctx context.Context, start entity.Coordinate, clock time.Time, stops []usecase.SequenceStop) (*usecase.SequenceResult, error) {
	order := make([]int, len(stops))
	for i := range order {
		order[i] = i
	}

	var (
		best          *entity.Route
		bestFeasible  bool
		bestViolating string
		bestViolCount = len(stops) + 1
	)

	permute := func(perm []int) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		route, violatingID, violCount, err := s.buildRoute(ctx, start, clock, stops, perm)
		if err != nil {
			return err
		}

		feasible := violCount == 0
		switch {
		case best == nil:
		case feasible && !bestFeasible:
		case feasible && bestFeasible && route.TotalDurationMin < best.TotalDurationMin:
		case !feasible && !bestFeasible && violCount < bestViolCount:
		default:
			return nil
		}

		best = route
		bestFeasible = feasible
		bestViolating = violatingID
		bestViolCount = violCount

		return nil
	}

	// When the budget expires mid-search, the best permutation examined so
	// far is returned.
	if err := permutations(order, permute); err != nil && (best == nil || ctx.Err() == nil) {
		return nil, err
	}

	return &usecase.SequenceResult{Route: *best, Feasible: bestFeasible, ViolatingOrderID: bestViolating}, nil
}

// permutations runs visit over every permutation of items (Heap's algorithm),
// stopping early if visit returns an error (e.g. context cancellation).
func permutations(items []int, visit func([]int) error) error {
	n := len(items)
	c := make([]int, n)
	work := append([]int(nil), items...)

	if err := visit(work); err != nil {
		return err
	}

	for i := 0; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[c[i]], work[i] = work[i], work[c[i]]
			}

			if err := visit(work); err != nil {
				return err
			}

			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}

	return nil
}

// sequenceHeuristic handles n > 8 via the tsp package's local-search solver:
// stops are modeled as a Hamiltonian cycle with a zero-cost return edge to
// the start, so the minimal cycle corresponds to the minimal open route.
func (s *sequencerService) sequenceHeuristic(ctx context.Context, start entity.Coordinate, clock time.Time, stops []usecase.SequenceStop) (*usecase.SequenceResult, error) {
	n := len(stops) + 1 // vertex 0 is the start location
	dense, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, errors.Wrap(err, "allocate sequencing distance matrix")
	}

	locations := make([]entity.Coordinate, n)
	locations[0] = start
	for i, stop := range stops {
		locations[i+1] = stop.Location
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			// A zero-cost edge back to the start turns the round-trip TSP
			// cycle into an equivalent open-path minimization.
			if j == 0 {
				if err := dense.Set(i, j, 0); err != nil {
					return nil, errors.Wrap(err, "set sequencing distance")
				}

				continue
			}

			minutes, _, travelErr := s.routing.TravelTimeMinutes(ctx, locations[i], locations[j])
			if travelErr != nil {
				return nil, errors.Wrap(travelErr, "travel time for sequencing matrix")
			}

			if err := dense.Set(i, j, minutes); err != nil {
				return nil, errors.Wrap(err, "set sequencing distance")
			}
		}
	}

	budget := time.Duration(0)
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Until(deadline)
	}

	opts := tsp.DefaultOptions()
	opts.Algo = tsp.TwoOptOnly
	opts.Symmetric = false
	opts.EnableLocalSearch = true
	opts.StartVertex = 0
	opts.TimeLimit = budget

	result, err := tsp.SolveWithMatrix(dense, nil, opts)
	if err != nil {
		s.logger.Warn("tsp heuristic sequencing failed, falling back to input order", "error", err)

		identity := make([]int, len(stops))
		for i := range identity {
			identity[i] = i
		}

		route, violatingID, violCount, buildErr := s.buildRoute(ctx, start, clock, stops, identity)
		if buildErr != nil {
			return nil, buildErr
		}

		return &usecase.SequenceResult{Route: *route, Feasible: violCount == 0, ViolatingOrderID: violatingID}, nil
	}

	// result.Tour is [0, v1, v2, ..., vn, 0]; translate vertex indices back
	// to stop indices (vertex i corresponds to stops[i-1]).
	order := make([]int, 0, len(stops))
	for _, vertex := range result.Tour[1 : len(result.Tour)-1] {
		if vertex == 0 {
			continue
		}

		order = append(order, vertex-1)
	}

	route, violatingID, violCount, err := s.buildRoute(ctx, start, clock, stops, order)
	if err != nil {
		return nil, err
	}

	return &usecase.SequenceResult{Route: *route, Feasible: violCount == 0, ViolatingOrderID: violatingID}, nil
}

// buildRoute computes cumulative ETAs (spec §4.2's ETA formula) for stops
// visited in the given order, returning the resulting route, the first
// order-id to miss its deadline (if any), and the total violation count.
func (s *sequencerService) buildRoute(ctx context.Context, start entity.Coordinate, clock time.Time, stops []usecase.SequenceStop, order []int) (*entity.Route, string, int, error) {
	route := entity.Route{
		Stops:     make([]entity.Stop, 0, len(order)+1),
		AllOnTime: true,
	}
	route.Stops = append(route.Stops, entity.Stop{
		OrderID: entity.StartStopID,
		Location: start,
		ETA:      clock,
		OnTime:   true,
		IsStart:  true,
	})

	currentLocation := start
	currentETA := clock
	violatingOrderID := ""
	violCount := 0

	for _, idx := range order {
		stop := stops[idx]

		result, err := s.routing.CalculateDistance(ctx, currentLocation, stop.Location)
		if err != nil {
			return nil, "", 0, errors.Wrap(err, "sequencer leg distance")
		}

		route.TotalDistanceKm += result.DistanceKm
		legMinutes := result.DurationMin

		eta := currentETA.Add(time.Duration(legMinutes * float64(time.Minute))).
			Add(entity.ServiceTime()).
			Add(time.Duration(stop.EstimatedDurationMin * float64(time.Minute)))

		onTime := !eta.After(stop.Deadline)
		if !onTime {
			route.AllOnTime = false
			violCount++
			if violatingOrderID == "" {
				violatingOrderID = stop.OrderID
			}
		}

		route.Stops = append(route.Stops, entity.Stop{
			OrderID:  stop.OrderID,
			Location: stop.Location,
			ETA:      eta,
			OnTime:   onTime,
			IsStart:  false,
		})

		route.TotalDurationMin += legMinutes + entity.ServiceTimeMin + stop.EstimatedDurationMin
		currentLocation = stop.Location
		currentETA = eta
	}

	return &route, violatingOrderID, violCount, nil
}
