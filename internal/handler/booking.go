package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
	"github.com/ravshanbk/asset-reservation/internal/queue"
)

// BookingHandler exposes the requester-facing booking operations: create,
// list, inspect, edit and extend. All methods assume JWT authentication
// ran; ownership and lifecycle legality are enforced by the engine.
type BookingHandler struct {
	Orchestrator *engine.Orchestrator
	Store        engine.ReservationStore
	Publisher    EventPublisher
}

// NewBookingHandler constructs a BookingHandler. Publisher may be nil to
// disable event publication (tests, local runs without a broker).
func NewBookingHandler(o *engine.Orchestrator, store engine.ReservationStore, pub EventPublisher) *BookingHandler {
	if o == nil || store == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Orchestrator: o, Store: store, Publisher: pub}
}

func (h *BookingHandler) publish(c echo.Context, eventType string, group []model.Reservation) {
	if h.Publisher == nil || len(group) == 0 {
		return
	}
	ev := queue.FromGroup(eventType, group)
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	// Best effort: the booking is committed, a lost event must not fail it.
	_ = h.Publisher.Publish(c.Request().Context(), ev)
}

// CreateBooking handles POST /v1/assets/:id/reservations. The request
// carries the interval and an optional purpose; the engine resolves the
// linked-asset cascade and books every member or nothing.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	requester, err := getRequester(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	assetID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid asset id"})
	}
	var body struct {
		Interval model.Interval `json:"interval"`
		Purpose  string         `json:"purpose"`
	}
	if err := c.Bind(&body); err != nil {
		if errors.Is(err, model.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	group, err := h.Orchestrator.RequestBooking(c.Request().Context(), assetID, body.Interval, requester, body.Purpose)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(c, queue.EventRequested, group)
	return c.JSON(http.StatusCreated, echo.Map{
		"group_id": group[0].GroupID,
		"items":    group,
	})
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *BookingHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Store.ListByRequester(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetReservation handles GET /v1/reservations/:id. Requesters see only
// their own rows; admins may inspect any.
func (h *BookingHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Store.GetByID(c.Request().Context(), resID)
	if err != nil {
		return engineError(c, err)
	}
	role, _ := c.Get("role").(string)
	if res.RequesterID != userID && role != "ADMIN" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// EditReservation handles PATCH /v1/reservations/:id. A pending or
// rejected booking gets a new interval and re-enters review as pending;
// the change applies to the whole cascade group.
func (h *BookingHandler) EditReservation(c echo.Context) error {
	requester, err := getRequester(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Interval model.Interval `json:"interval"`
	}
	if err := c.Bind(&body); err != nil {
		if errors.Is(err, model.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	group, err := h.Orchestrator.EditReservation(c.Request().Context(), resID, requester, body.Interval)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(c, queue.EventEdited, group)
	return c.JSON(http.StatusOK, echo.Map{"items": group})
}

// ExtendReservation handles POST /v1/reservations/:id/extend. Trailing
// days are appended to an approved booking, which then re-enters review.
func (h *BookingHandler) ExtendReservation(c echo.Context) error {
	requester, err := getRequester(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Days int `json:"days"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	group, err := h.Orchestrator.ExtendReservation(c.Request().Context(), resID, requester, body.Days)
	if err != nil {
		return engineError(c, err)
	}
	h.publish(c, queue.EventExtended, group)
	return c.JSON(http.StatusOK, echo.Map{"items": group})
}
