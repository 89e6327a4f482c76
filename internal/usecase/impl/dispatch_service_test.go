package impl

import (
	"context"
	"testing"
	"time"

	"radar/internal/domain/entity"
	"radar/internal/infra/scoring"
	"radar/internal/infra/zone"
	"radar/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolvedGeocoder struct{}

func (resolvedGeocoder) Forward(_ context.Context, addr entity.OrderAddress) (entity.Coordinate, bool, error) {
	if addr.Structured != nil && addr.Structured.Coordinate != nil {
		return *addr.Structured.Coordinate, true, nil
	}

	return entity.Coordinate{}, false, nil
}

func (resolvedGeocoder) Reverse(_ context.Context, coord entity.Coordinate) (*entity.Address, error) {
	return &entity.Address{Coordinate: &coord}, nil
}

func newDispatchServiceForTest(t *testing.T, zones entity.ZoneSet) usecase.DispatchUsecase {
	t.Helper()
	routing := haversineRouting{}
	sequencer := NewSequencerService(routing, nil)
	feasibility := NewFeasibilityService(sequencer, routing, nil)
	scorer := NewScorerService(feasibility, routing, nil)
	zoneFilter := NewZoneFilterService(zone.NewStoreFromSet(zones), nil)

	store := scoring.NewStore(entity.DefaultWeights())

	return NewDispatchService(resolvedGeocoder{}, zoneFilter, scorer, sequencer, nil, nil, store, 3, nil)
}

func worldZoneSet() entity.ZoneSet {
	return entity.ZoneSet{Zones: []entity.Zone{
		{Name: "EVERYWHERE", North: 90, South: -90, East: 180, West: -180},
	}}
}

// S1 — empty-fleet vehicle wins on interference.
func TestDispatchService_S1_EmptyFleetWinsOnInterference(t *testing.T) {
	dispatch := newDispatchServiceForTest(t, worldZoneSet())

	now := time.Now()
	order := entity.Order{
		OrderID:              "o1",
		Address:              entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: -34.60, Lng: -58.38}}},
		Deadline:             now.Add(2 * time.Hour),
		Priority:             entity.PriorityNormal,
		WeightKg:             2.8,
		EstimatedDurationMin: 5,
		CreatedAt:            now,
	}

	v1 := entity.Vehicle{VehicleID: "v1", Location: entity.Coordinate{Lat: -34.59, Lng: -58.37}, Capacity: 6, MaxWeightKg: 30, PerformanceScore: 0.92}
	// V2 is already carrying a full, tightly-windowed route: three
	// committed stops, each 10km apart, leaving no slack and no spare
	// capacity — inserting another stop is maximally disruptive.
	v2 := entity.Vehicle{
		VehicleID: "v2", Location: entity.Coordinate{Lat: -34.60, Lng: -58.38}, Capacity: 3, MaxWeightKg: 150, PerformanceScore: 0.60,
		CurrentOrders: []entity.Order{
			{OrderID: "c1", ResolvedLocation: entity.Coordinate{Lat: -34.51, Lng: -58.38}, Deadline: now.Add(30 * time.Minute), CreatedAt: now},
			{OrderID: "c2", ResolvedLocation: entity.Coordinate{Lat: -34.42, Lng: -58.38}, Deadline: now.Add(60 * time.Minute), CreatedAt: now},
			{OrderID: "c3", ResolvedLocation: entity.Coordinate{Lat: -34.33, Lng: -58.38}, Deadline: now.Add(105 * time.Minute), CreatedAt: now},
		},
	}

	result, err := dispatch.DispatchSingle(context.Background(), order, []entity.Vehicle{v1, v2}, now, usecase.DispatchOptions{})
	require.NoError(t, err)
	require.True(t, result.Assigned)
	assert.Equal(t, "v1", result.VehicleID)
}

// S2 — hard rejection on tight deadline.
func TestDispatchService_S2_InfeasibleAll(t *testing.T) {
	dispatch := newDispatchServiceForTest(t, worldZoneSet())

	now := time.Now()
	order := entity.Order{
		OrderID:              "o2",
		Address:              entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: 0.07, Lng: 0.07}}},
		Deadline:             now.Add(25 * time.Minute),
		Priority:             entity.PriorityNormal,
		WeightKg:             1,
		EstimatedDurationMin: 5,
		CreatedAt:            now,
	}

	vehicle := entity.Vehicle{
		VehicleID: "v1", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 2, MaxWeightKg: 10,
		CurrentOrders: []entity.Order{
			{OrderID: "committed", ResolvedLocation: entity.Coordinate{Lat: 0.018, Lng: 0}, Deadline: now.Add(30 * time.Minute), CreatedAt: now},
		},
	}

	result, err := dispatch.DispatchSingle(context.Background(), order, []entity.Vehicle{vehicle}, now, usecase.DispatchOptions{})
	require.NoError(t, err)
	assert.False(t, result.Assigned)
	assert.Equal(t, "infeasible-all", result.FailureReason)
}

// S3 — out-of-zone vehicle filtered out of all_vehicle_scores.
func TestDispatchService_S3_OutOfZoneFiltered(t *testing.T) {
	zones := entity.ZoneSet{Zones: []entity.Zone{
		{Name: "CENTRO", North: 1, South: 0, East: 1, West: 0, Adjacent: []string{}},
		{Name: "FAR_SUBURB", North: -5, South: -6, East: 1, West: 0, Adjacent: []string{}},
	}}
	dispatch := newDispatchServiceForTest(t, zones)

	now := time.Now()
	order := entity.Order{
		OrderID:              "o3",
		Address:              entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: 0.5, Lng: 0.5}}},
		Deadline:             now.Add(3 * time.Hour),
		Priority:             entity.PriorityNormal,
		WeightKg:             1,
		EstimatedDurationMin: 5,
		CreatedAt:            now,
	}

	v1 := entity.Vehicle{VehicleID: "v1", Location: entity.Coordinate{Lat: 0.5, Lng: 0.5}, Capacity: 2, MaxWeightKg: 10}
	v2 := entity.Vehicle{VehicleID: "v2", Location: entity.Coordinate{Lat: -5.5, Lng: 0.5}, Capacity: 2, MaxWeightKg: 10}

	result, err := dispatch.DispatchSingle(context.Background(), order, []entity.Vehicle{v1, v2}, now, usecase.DispatchOptions{})
	require.NoError(t, err)
	require.True(t, result.Assigned)
	assert.Equal(t, "v1", result.VehicleID)

	ids := make([]string, len(result.AllScores))
	for i, s := range result.AllScores {
		ids[i] = s.VehicleID
	}
	assert.NotContains(t, ids, "v2")
}

func TestDispatchService_NoCapacity(t *testing.T) {
	dispatch := newDispatchServiceForTest(t, worldZoneSet())

	now := time.Now()
	order := entity.Order{
		OrderID:  "o4",
		Address:  entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: 0, Lng: 0}}},
		Deadline: now.Add(1 * time.Hour),
		WeightKg: 100,
		CreatedAt: now,
	}
	vehicle := entity.Vehicle{VehicleID: "v1", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 1, MaxWeightKg: 5}

	result, err := dispatch.DispatchSingle(context.Background(), order, []entity.Vehicle{vehicle}, now, usecase.DispatchOptions{})
	require.NoError(t, err)
	assert.False(t, result.Assigned)
	assert.Equal(t, "no-capacity", result.FailureReason)
}

// Fast mode must not let a straight-line-approximated candidate outside the
// top-K outrank a properly scored top-K candidate.
func TestBestFeasibleIndex_RestrictsToTopKUnlessAllInfeasible(t *testing.T) {
	scores := []entity.AssignmentScore{
		{VehicleID: "outsider", Total: 0.95}, // not in fastModeSet, approximated
		{VehicleID: "topk-1", Total: 0.80},
		{VehicleID: "topk-2", Total: 0.10},
	}
	fastModeSet := map[string]bool{"topk-1": true, "topk-2": true}

	idx := bestFeasibleIndex(scores, fastModeSet)
	require.Equal(t, 1, idx)
	assert.Equal(t, "topk-1", scores[idx].VehicleID)
}

func TestBestFeasibleIndex_FallsBackWhenAllTopKInfeasible(t *testing.T) {
	scores := []entity.AssignmentScore{
		{VehicleID: "outsider", Total: 0.95},
		{VehicleID: "topk-1", Total: 0},
		{VehicleID: "topk-2", Total: 0},
	}
	fastModeSet := map[string]bool{"topk-1": true, "topk-2": true}

	idx := bestFeasibleIndex(scores, fastModeSet)
	require.Equal(t, 0, idx)
	assert.Equal(t, "outsider", scores[idx].VehicleID)
}

func TestBestFeasibleIndex_NoFastMode(t *testing.T) {
	scores := []entity.AssignmentScore{
		{VehicleID: "v1", Total: 0.5},
		{VehicleID: "v2", Total: 0.2},
	}

	idx := bestFeasibleIndex(scores, nil)
	require.Equal(t, 0, idx)
}

func TestBestFeasibleIndex_AllInfeasible(t *testing.T) {
	scores := []entity.AssignmentScore{
		{VehicleID: "v1", Total: 0},
	}

	idx := bestFeasibleIndex(scores, nil)
	require.Equal(t, -1, idx)
}

func TestDispatchService_UnresolvedAddress(t *testing.T) {
	dispatch := newDispatchServiceForTest(t, worldZoneSet())

	now := time.Now()
	order := entity.Order{
		OrderID:  "o5",
		Address:  entity.OrderAddress{FreeText: "somewhere unresolvable"},
		Deadline: now.Add(1 * time.Hour),
		CreatedAt: now,
	}
	vehicle := entity.Vehicle{VehicleID: "v1", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 2, MaxWeightKg: 10}

	result, err := dispatch.DispatchSingle(context.Background(), order, []entity.Vehicle{vehicle}, now, usecase.DispatchOptions{})
	require.NoError(t, err)
	assert.False(t, result.Assigned)
	assert.Equal(t, "unresolved-address", result.FailureReason)
}
