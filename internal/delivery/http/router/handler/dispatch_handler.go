package handler

import (
	"net/http"
	"time"

	"radar/internal/delivery/http/response"
	"radar/internal/domain/entity"
	"radar/internal/usecase"

	"log/slog"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DispatchHandlerParams holds dependencies for DispatchHandler, injected by Fx.
type DispatchHandlerParams struct {
	fx.In

	DispatchUC      usecase.DispatchUsecase
	BatchDispatchUC usecase.BatchDispatchUsecase
	SequencerUC     usecase.SequencerUsecase
	Logger          *slog.Logger
}

// DispatchHandler exposes the §6 external interfaces for single/batch
// dispatch and route resequencing.
type DispatchHandler struct {
	dispatchUC      usecase.DispatchUsecase
	batchDispatchUC usecase.BatchDispatchUsecase
	sequencerUC     usecase.SequencerUsecase
	logger          *slog.Logger
}

// NewDispatchHandler is the constructor for DispatchHandler.
func NewDispatchHandler(params DispatchHandlerParams) *DispatchHandler {
	return &DispatchHandler{
		dispatchUC:      params.DispatchUC,
		batchDispatchUC: params.BatchDispatchUC,
		sequencerUC:     params.SequencerUC,
		logger:          params.Logger,
	}
}

// DispatchSingleRequest is the request body for POST /dispatch/single.
type DispatchSingleRequest struct {
	Order    entity.Order     `json:"order" validate:"required"`
	Vehicles []entity.Vehicle `json:"vehicles" validate:"required,min=1"`
	FastMode bool             `json:"fast_mode"`
	MaxCandidates int         `json:"max_candidates"`
	TimeBudgetS   float64     `json:"time_budget_s"`
}

// DispatchSingle handles POST /dispatch/single.
func (h *DispatchHandler) DispatchSingle(c echo.Context) error {
	var req DispatchSingleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid dispatch request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	opts := usecase.DispatchOptions{
		FastMode:      req.FastMode,
		MaxCandidates: req.MaxCandidates,
		TimeBudget:    secondsToDuration(req.TimeBudgetS),
	}

	result, err := h.dispatchUC.DispatchSingle(c.Request().Context(), req.Order, req.Vehicles, time.Now(), opts)
	if err != nil {
		h.logger.Error("dispatch single failed", "error", err)

		return response.InternalServerError(c, "DISPATCH_FAILED", "dispatch could not be completed")
	}

	return response.Success(c, http.StatusOK, result, "")
}

// DispatchBatchRequest is the request body for POST /dispatch/batch.
type DispatchBatchRequest struct {
	Orders       []entity.Order   `json:"orders" validate:"required,min=1"`
	Vehicles     []entity.Vehicle `json:"vehicles" validate:"required,min=1"`
	PrioritySort bool             `json:"priority_sort"`
	FastMode     bool             `json:"fast_mode"`
	TimeBudgetS  float64          `json:"time_budget_s"`
}

// DispatchBatch handles POST /dispatch/batch.
func (h *DispatchHandler) DispatchBatch(c echo.Context) error {
	var req DispatchBatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid batch dispatch request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	opts := usecase.BatchDispatchOptions{
		PrioritySort: req.PrioritySort,
		FastMode:     req.FastMode,
		TimeBudget:   secondsToDuration(req.TimeBudgetS),
	}

	result, err := h.batchDispatchUC.DispatchBatch(c.Request().Context(), req.Orders, req.Vehicles, time.Now(), opts)
	if err != nil {
		h.logger.Error("dispatch batch failed", "error", err)

		return response.InternalServerError(c, "DISPATCH_BATCH_FAILED", "batch dispatch could not be completed")
	}

	return response.Success(c, http.StatusOK, result, "")
}

// ResequenceRouteRequest is the request body for POST /dispatch/resequence.
type ResequenceRouteRequest struct {
	Start       entity.Coordinate      `json:"start" validate:"required"`
	Stops       []usecase.SequenceStop `json:"stops" validate:"required"`
	TimeBudgetS float64                `json:"time_budget_s"`
}

// ResequenceRoute handles POST /dispatch/resequence.
func (h *DispatchHandler) ResequenceRoute(c echo.Context) error {
	var req ResequenceRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid resequence request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	result, err := h.sequencerUC.Sequence(c.Request().Context(), req.Start, time.Now(), req.Stops, secondsToDuration(req.TimeBudgetS))
	if err != nil {
		h.logger.Error("route resequence failed", "error", err)

		return response.InternalServerError(c, "RESEQUENCE_FAILED", "route could not be sequenced")
	}

	return response.Success(c, http.StatusOK, result, "")
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}

	return time.Duration(s * float64(time.Second))
}
