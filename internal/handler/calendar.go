package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

// CalendarHandler serves the availability and calendar views consumed by
// presentation collaborators. Responses are cacheable GETs.
type CalendarHandler struct {
	Index      *engine.AvailabilityIndex
	Aggregator *engine.Aggregator
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(index *engine.AvailabilityIndex, agg *engine.Aggregator) *CalendarHandler {
	if index == nil || agg == nil {
		panic("nil dependency passed to NewCalendarHandler")
	}
	return &CalendarHandler{Index: index, Aggregator: agg}
}

func parseDateQuery(c echo.Context, name string) (time.Time, bool) {
	t, err := time.Parse(model.DateLayout, c.QueryParam(name))
	return model.Date(t), err == nil
}

func parseAssetList(raw string) ([]uint64, bool) {
	if raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// Availability handles GET /v1/assets/:id/availability?from=&to=. It
// returns the live reservations of one asset intersecting the range.
func (h *CalendarHandler) Availability(c echo.Context) error {
	assetID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid asset id"})
	}
	from, okFrom := parseDateQuery(c, "from")
	to, okTo := parseDateQuery(c, "to")
	if !okFrom || !okTo || from.After(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to must be valid dates with from <= to"})
	}
	items, err := h.Index.IntervalsInRange(c.Request().Context(), assetID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"asset_id": assetID, "items": items})
}

// Calendar handles GET /v1/calendar/:view?assets=&from=&to= where view is
// day, week or month.
func (h *CalendarHandler) Calendar(c echo.Context) error {
	assetIDs, ok := parseAssetList(c.QueryParam("assets"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "assets must be a comma-separated list of ids"})
	}
	from, okFrom := parseDateQuery(c, "from")
	to, okTo := parseDateQuery(c, "to")
	if !okFrom || !okTo || from.After(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to must be valid dates with from <= to"})
	}
	ctx := c.Request().Context()
	switch c.Param("view") {
	case "day":
		buckets, err := h.Aggregator.BucketByDay(ctx, assetIDs, from, to)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build calendar"})
		}
		return c.JSON(http.StatusOK, echo.Map{"days": buckets})
	case "week":
		buckets, err := h.Aggregator.BucketByWeek(ctx, assetIDs, from, to)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build calendar"})
		}
		return c.JSON(http.StatusOK, echo.Map{"weeks": buckets})
	case "month":
		buckets, err := h.Aggregator.BucketByMonth(ctx, assetIDs, from, to)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build calendar"})
		}
		return c.JSON(http.StatusOK, echo.Map{"months": buckets})
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "view must be day, week or month"})
	}
}
