// Package handler implements the HTTP surface over the booking engine.
// Handlers bind and validate input, call the engine, and translate engine
// errors into HTTP statuses; no scheduling logic lives here.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
	"github.com/ravshanbk/asset-reservation/internal/queue"
)

// EventPublisher sends a reservation lifecycle event to the broker.
// Handlers publish after the commit and ignore failures; the production
// implementation lives in the queue_publisher package.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// getUserID extracts the authenticated user's id from the context. JWT
// claims arrive as float64 or string depending on how the token was
// minted, so accept both.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRequester builds the engine Requester from the JWT claims stored by
// the auth middleware.
func getRequester(c echo.Context) (engine.Requester, error) {
	id, err := getUserID(c)
	if err != nil {
		return engine.Requester{}, err
	}
	name, _ := c.Get("user_name").(string)
	return engine.Requester{ID: id, Name: name}, nil
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// engineError translates an engine failure into the HTTP response the
// caller can act on. Conflicts carry the offending asset and the blocking
// reservation so the user can pick another slot.
func engineError(c echo.Context, err error) error {
	var conflict *engine.ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "interval conflicts with an existing reservation",
			"asset_id": conflict.AssetID,
			"blocking": conflict.Blocking,
		})
	case errors.Is(err, model.ErrInvalidInterval):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrAssetNotFound), errors.Is(err, engine.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrAssetNotReservable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, engine.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrCommitRace):
		// The orchestrator already retried once; tell the client to try
		// again rather than reporting a hard conflict.
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking contention, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
