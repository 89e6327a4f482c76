package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"radar/internal/domain/entity"
	"radar/internal/usecase"
)

const (
	distanceScoreDivisorMin = 30.0
	neutralCompatibility    = 0.50
)

// scorerService implements usecase.ScorerUsecase (spec §4.3): the six
// sub-scores plus their weighted total for one (vehicle, order) candidate.
type scorerService struct {
	feasibility usecase.FeasibilityUsecase
	routing     usecase.RoutingUsecase
	logger      *slog.Logger
}

// NewScorerService is the constructor for scorerService.
func NewScorerService(feasibility usecase.FeasibilityUsecase, routing usecase.RoutingUsecase, logger *slog.Logger) usecase.ScorerUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	return &scorerService{feasibility: feasibility, routing: routing, logger: logger}
}

func (s *scorerService) Score(ctx context.Context, in usecase.ScoreCandidateInput, weights entity.Weights) (*entity.AssignmentScore, error) {
	score := &entity.AssignmentScore{VehicleID: in.Vehicle.VehicleID}

	distance, travelMinutes, err := s.distanceScore(ctx, in.Vehicle, in.Order)
	if err != nil {
		return nil, err
	}
	score.DistanceScore = distance
	score.CapacityScore = capacityScore(in.Vehicle)
	score.CompatibilityScore = compatibilityScore(in.Vehicle, in.Order)
	score.PerformanceScore = in.Vehicle.ClampedPerformanceScore()

	var (
		feasible     bool
		estArrival   float64
		interference float64
		reasoning    []string
		violator     string
	)

	if in.FastModeEuclideanOnly {
		feasible = true
		estArrival = travelMinutes
		interference = interferenceScore(travelMinutes)
		reasoning = []string{"fast-mode: interference approximated from straight-line travel time only"}
	} else {
		result, evalErr := s.feasibility.Evaluate(ctx, in.Vehicle, in.Order, in.Clock)
		if evalErr != nil {
			return nil, evalErr
		}
		feasible = result.Feasible
		estArrival = result.EstimatedArrivalMin
		interference = interferenceScore(result.WithNewDurationMin - result.BaselineDurationMin)
		reasoning = result.Reasoning
		violator = result.ViolatingOrderID
		score.InterferenceMin = result.WithNewDurationMin - result.BaselineDurationMin
	}

	score.InterferenceScore = interference
	score.EstimatedArrivalMin = estArrival
	score.Feasible = feasible

	if !feasible {
		score.Total = 0
		if violator != "" {
			score.Reasoning = []string{fmt.Sprintf("infeasible: order %s would miss its deadline", violator)}
		} else if len(reasoning) > 0 {
			score.Reasoning = reasoning[:1]
		} else {
			score.Reasoning = []string{"infeasible"}
		}

		return score, nil
	}

	score.UrgencyScore = urgencyScore(in.Order, in.Clock, estArrival)
	score.Reasoning = reasoning
	score.Total = weights.Sum(
		score.DistanceScore,
		score.CapacityScore,
		score.UrgencyScore,
		score.CompatibilityScore,
		score.PerformanceScore,
		score.InterferenceScore,
	)

	return score, nil
}

func (s *scorerService) distanceScore(ctx context.Context, vehicle entity.Vehicle, order entity.Order) (float64, float64, error) {
	minutes, _, err := s.routing.TravelTimeMinutes(ctx, vehicle.Location, order.ResolvedLocation)
	if err != nil {
		return 0, 0, err
	}

	return 1 / (1 + minutes/distanceScoreDivisorMin), minutes, nil
}

func capacityScore(vehicle entity.Vehicle) float64 {
	if vehicle.Capacity <= 0 {
		return 0
	}

	currentLoad := len(vehicle.CurrentOrders)
	score := float64(vehicle.Capacity-currentLoad) / float64(vehicle.Capacity)
	if score < 0 {
		return 0
	}

	return score
}

// urgencyScore implements spec §4.3's urgency sub-score: a piecewise
// function of time-slack (deadline minus the new stop's estimated arrival
// time), plus a priority bump clipped to 1.0.
func urgencyScore(order entity.Order, clock time.Time, etaMin float64) float64 {
	arrival := clock.Add(time.Duration(etaMin * float64(time.Minute)))
	slackMin := order.Deadline.Sub(arrival).Minutes()

	var base float64
	switch {
	case slackMin >= 60:
		base = 1.0
	case slackMin >= 30:
		base = 0.85
	case slackMin >= 10:
		base = 0.6
	case slackMin >= 0:
		base = 0.3
	default:
		base = 0.0
	}

	score := base + order.Priority.PriorityBump()
	if score > 1.0 {
		return 1.0
	}

	return score
}

func compatibilityScore(vehicle entity.Vehicle, order entity.Order) float64 {
	if len(vehicle.CurrentOrders) == 0 {
		return neutralCompatibility
	}

	newBearing := entity.BearingRad(vehicle.Location, order.ResolvedLocation)

	var sum float64
	for _, existing := range vehicle.CurrentOrders {
		existingBearing := entity.BearingRad(vehicle.Location, existing.ResolvedLocation)
		sum += math.Cos(existingBearing - newBearing)
	}
	mean := sum / float64(len(vehicle.CurrentOrders))

	return (mean + 1) / 2
}

func interferenceScore(deltaMinutes float64) float64 {
	switch {
	case deltaMinutes <= 0:
		return 1.0
	case deltaMinutes <= 30:
		return 1 - deltaMinutes/60
	default:
		v := 0.5 - (deltaMinutes-30)/120
		if v < 0 {
			return 0
		}

		return v
	}
}

// stableSortCandidates breaks ties by vehicle-id lexicographic order, per
// spec §4.3's determinism requirement. Kept here (rather than in the
// dispatcher) since it is purely a function of AssignmentScore values.
func stableSortCandidates(scores []entity.AssignmentScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}

		return scores[i].VehicleID < scores[j].VehicleID
	})
}
