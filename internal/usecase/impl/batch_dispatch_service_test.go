package impl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"radar/internal/domain/entity"
	"radar/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatchDispatchServiceForTest(t *testing.T) usecase.BatchDispatchUsecase {
	t.Helper()
	dispatch := newDispatchServiceForTest(t, worldZoneSet())

	return NewBatchDispatchService(dispatch, nil)
}

// S5 — batch preserves fleet invariants.
func TestBatchDispatchService_S5_PreservesFleetInvariants(t *testing.T) {
	batch := newBatchDispatchServiceForTest(t)

	now := time.Now()
	orders := make([]entity.Order, 5)
	for i := range orders {
		orders[i] = entity.Order{
			OrderID:              fmt.Sprintf("o%d", i),
			Address:              entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: 0.01 * float64(i), Lng: 0.01 * float64(i)}}},
			Deadline:             now.Add(3 * time.Hour),
			Priority:             entity.PriorityNormal,
			WeightKg:             1,
			EstimatedDurationMin: 5,
			CreatedAt:            now,
		}
	}

	fleet := []entity.Vehicle{
		{VehicleID: "v1", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 2, MaxWeightKg: 10},
		{VehicleID: "v2", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 2, MaxWeightKg: 10},
		{VehicleID: "v3", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 2, MaxWeightKg: 10},
	}

	result, err := batch.DispatchBatch(context.Background(), orders, fleet, now, usecase.BatchDispatchOptions{})
	require.NoError(t, err)

	assigned := 0
	for _, r := range result.Results {
		if r.Assigned {
			assigned++
		}
	}
	assert.Equal(t, result.Summary.Assigned, assigned)

	loadByVehicle := map[string]int{}
	for _, r := range result.Results {
		if r.Assigned {
			loadByVehicle[r.VehicleID]++
		}
	}
	for id, load := range loadByVehicle {
		assert.LessOrEqual(t, load, 2, "vehicle %s exceeded capacity", id)
	}

	totalCommitted := 0
	for _, load := range loadByVehicle {
		totalCommitted += load
	}
	assert.Equal(t, assigned, totalCommitted)
}

// S6 — time-budget triggers graceful partial result.
func TestBatchDispatchService_S6_TimeBudgetPartialResult(t *testing.T) {
	batch := newBatchDispatchServiceForTest(t)

	now := time.Now()
	orders := make([]entity.Order, 50)
	for i := range orders {
		orders[i] = entity.Order{
			OrderID:              fmt.Sprintf("o%d", i),
			Address:              entity.OrderAddress{Structured: &entity.Address{Coordinate: &entity.Coordinate{Lat: 0.001 * float64(i), Lng: 0.001 * float64(i)}}},
			Deadline:             now.Add(3 * time.Hour),
			Priority:             entity.PriorityNormal,
			WeightKg:             1,
			EstimatedDurationMin: 5,
			CreatedAt:            now,
		}
	}
	fleet := []entity.Vehicle{
		{VehicleID: "v1", Location: entity.Coordinate{Lat: 0, Lng: 0}, Capacity: 100, MaxWeightKg: 1000},
	}

	result, err := batch.DispatchBatch(context.Background(), orders, fleet, now, usecase.BatchDispatchOptions{
		TimeBudget: 1 * time.Nanosecond,
	})
	require.NoError(t, err)
	assert.True(t, result.Summary.TimeBudgetExceeded)

	for _, r := range result.Results {
		if !r.Assigned {
			assert.Contains(t, []string{"time-budget-exceeded", "infeasible-all", "no-capacity", "unresolved-address"}, r.FailureReason)
		}
	}
}
