package handler

import (
	"log/slog"
	"net/http"

	"radar/internal/delivery/http/response"
	"radar/internal/domain/entity"
	"radar/internal/infra/scoring"
	"radar/internal/infra/zone"

	"github.com/labstack/echo/v4"
)

// AdminHandler exposes operator-only controls: the scorer weight hot-swap
// and the zone-partition reload (spec.md §9's recast of both as mutable
// config).
type AdminHandler struct {
	scoringStore *scoring.Store
	zoneStore    *zone.Store
	logger       *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler.
func NewAdminHandler(scoringStore *scoring.Store, zoneStore *zone.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{scoringStore: scoringStore, zoneStore: zoneStore, logger: logger}
}

// ReloadZones handles POST /admin/zones/reload: it re-reads the zones
// config file and swaps the active ZoneSet under zone.Store's RWMutex,
// taking effect on the next dispatch call without a restart. A read or
// parse failure leaves the previous ZoneSet in effect and returns an error.
func (h *AdminHandler) ReloadZones(c echo.Context) error {
	if err := h.zoneStore.Reload(); err != nil {
		h.logger.Error("zone config reload failed", "error", err)

		return response.InternalServerError(c, "ZONE_RELOAD_FAILED", "failed to reload zone config")
	}

	zones := h.zoneStore.Get()
	h.logger.Info("zone config reloaded", "zone_count", len(zones.Zones))

	return response.Success(c, http.StatusOK, zones, "zone config reloaded")
}

// ScoringConfigRequest is the request body for PUT /admin/scoring-config.
// The six weights must sum to 1.00 within 1e-9, matching the scorer's own
// invariant (entity.Weights.Valid).
type ScoringConfigRequest struct {
	Distance      float64 `json:"distance" validate:"required"`
	Capacity      float64 `json:"capacity" validate:"required"`
	Urgency       float64 `json:"urgency" validate:"required"`
	Compatibility float64 `json:"compatibility" validate:"required"`
	Performance   float64 `json:"performance" validate:"required"`
	Interference  float64 `json:"interference" validate:"required"`
}

// UpdateScoringConfig handles PUT /admin/scoring-config: it hot-swaps the
// scorer's weight vector under scoring.Store's RWMutex, taking effect on
// the next dispatch call without a restart.
func (h *AdminHandler) UpdateScoringConfig(c echo.Context) error {
	var req ScoringConfigRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "invalid scoring config body")
	}

	weights := entity.Weights{
		Distance:      req.Distance,
		Capacity:      req.Capacity,
		Urgency:       req.Urgency,
		Compatibility: req.Compatibility,
		Performance:   req.Performance,
		Interference:  req.Interference,
	}
	if !weights.Valid() {
		return response.BadRequest(c, "INVALID_WEIGHTS", "weights must sum to 1.00 within 1e-9")
	}

	h.scoringStore.Set(weights)
	h.logger.Info("scoring config updated",
		"distance", weights.Distance,
		"capacity", weights.Capacity,
		"urgency", weights.Urgency,
		"compatibility", weights.Compatibility,
		"performance", weights.Performance,
		"interference", weights.Interference,
	)

	return response.Success(c, http.StatusOK, weights, "scoring config updated")
}

// GetScoringConfig handles GET /admin/scoring-config, returning the weight
// vector currently in effect.
func (h *AdminHandler) GetScoringConfig(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.scoringStore.Get(), "")
}
