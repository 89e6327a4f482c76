package impl

import (
	"context"
	"log/slog"
	"time"

	"radar/internal/domain/entity"
	domainerrors "radar/internal/domain/errors"
	"radar/internal/usecase"
)

const defaultBatchDispatchBudget = 10 * time.Second

// batchDispatchService implements usecase.BatchDispatchUsecase (spec §4.7):
// a sequential outer loop that mutates an in-memory fleet copy per order
// and stops early once its wall-clock budget is exhausted.
type batchDispatchService struct {
	dispatch usecase.DispatchUsecase
	logger   *slog.Logger
}

// NewBatchDispatchService is the constructor for batchDispatchService.
func NewBatchDispatchService(dispatch usecase.DispatchUsecase, logger *slog.Logger) usecase.BatchDispatchUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	return &batchDispatchService{dispatch: dispatch, logger: logger}
}

func (b *batchDispatchService) DispatchBatch(ctx context.Context, orders []entity.Order, fleet []entity.Vehicle, clock time.Time, opts usecase.BatchDispatchOptions) (*usecase.BatchDispatchResult, error) {
	budget := opts.TimeBudget
	if budget <= 0 {
		budget = defaultBatchDispatchBudget
	}
	deadline := time.Now().Add(budget)

	ordered := orders
	if opts.PrioritySort {
		ordered = entity.SortByUrgency(orders)
	}

	fleetState := make([]entity.Vehicle, len(fleet))
	copy(fleetState, fleet)

	result := &usecase.BatchDispatchResult{Results: make([]usecase.BatchOrderResult, 0, len(ordered))}

	for _, order := range ordered {
		if time.Now().After(deadline) {
			result.Results = append(result.Results, usecase.BatchOrderResult{
				OrderID: order.OrderID,
				DispatchResult: usecase.DispatchResult{
					FailureReason: domainerrors.ErrTimeBudgetExceeded.ErrorCode(),
				},
			})
			result.Summary.Failed++
			result.Summary.TimeBudgetExceeded = true

			continue
		}

		remaining := time.Until(deadline)
		dispatchResult, err := b.dispatch.DispatchSingle(ctx, order, fleetState, clock, usecase.DispatchOptions{
			FastMode:   opts.FastMode,
			TimeBudget: remaining,
		})
		if err != nil {
			return nil, err
		}

		result.Results = append(result.Results, usecase.BatchOrderResult{OrderID: order.OrderID, DispatchResult: *dispatchResult})

		if dispatchResult.Assigned {
			result.Summary.Assigned++
			committedOrder := order
			if dispatchResult.ResolvedOrder != nil {
				committedOrder = *dispatchResult.ResolvedOrder
			}
			fleetState = mutateFleet(fleetState, dispatchResult.VehicleID, committedOrder)
		} else {
			result.Summary.Failed++
		}
	}

	return result, nil
}

// mutateFleet returns a copy of fleet with order appended to the committed
// orders of the vehicle matching vehicleID, leaving every other vehicle
// value unchanged. Spec §4.7: committing an assignment advances fleet state
// for every subsequent order in the same batch.
func mutateFleet(fleet []entity.Vehicle, vehicleID string, order entity.Order) []entity.Vehicle {
	next := make([]entity.Vehicle, len(fleet))
	for i, v := range fleet {
		if v.VehicleID == vehicleID {
			next[i] = v.WithOrder(order)
		} else {
			next[i] = v
		}
	}

	return next
}
