package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
	"github.com/ravshanbk/asset-reservation/internal/queue"
)

// AdminHandler exposes the administrative reservation operations. Routes
// are gated by RequireRole("ADMIN"); the engine additionally enforces
// that only pending reservations can be decided.
type AdminHandler struct {
	Orchestrator *engine.Orchestrator
	Store        engine.ReservationStore
	Publisher    EventPublisher
}

// NewAdminHandler constructs an AdminHandler. Publisher may be nil.
func NewAdminHandler(o *engine.Orchestrator, store engine.ReservationStore, pub EventPublisher) *AdminHandler {
	if o == nil || store == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Orchestrator: o, Store: store, Publisher: pub}
}

// DecideReservation handles POST /v1/reservations/:id/decision with a
// body of {"action": "approve"} or {"action": "reject"}.
func (h *AdminHandler) DecideReservation(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var approve bool
	switch body.Action {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be approve or reject"})
	}
	res, err := h.Orchestrator.DecideReservation(c.Request().Context(), resID, approve)
	if err != nil {
		return engineError(c, err)
	}
	if h.Publisher != nil {
		eventType := queue.EventRejected
		if approve {
			eventType = queue.EventApproved
		}
		ev := queue.FromGroup(eventType, []model.Reservation{*res})
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
		_ = h.Publisher.Publish(c.Request().Context(), ev)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// ListAssetReservations handles GET /v1/admin/assets/:id/reservations,
// returning every reservation for the asset regardless of status.
func (h *AdminHandler) ListAssetReservations(c echo.Context) error {
	assetID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid asset id"})
	}
	items, err := h.Store.ListByAsset(c.Request().Context(), assetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
