package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arthemi/roombook/internal/repository"
)

// AvailabilityHandler serves the public, read-only room and availability
// endpoints.  These are the cacheable routes; mutations never pass through
// here.
type AvailabilityHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *AvailabilityHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Rooms: rooms, Bookings: bookings}
}

// ListRooms handles GET /v1/rooms and returns every active room.
func (h *AvailabilityHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type roomView struct {
		ID              uint64 `json:"id"`
		Name            string `json:"name"`
		Tier            int    `json:"tier"`
		HourlyRateCents int64  `json:"hourly_rate_cents"`
	}
	views := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, roomView{ID: r.ID, Name: r.Name, Tier: r.Tier, HourlyRateCents: r.HourlyRateCents})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": views})
}

// BusySlots handles GET /v1/rooms/:id/busy?from=...&to=... and lists the
// occupied intervals of a room.  Only intervals are exposed, never who
// booked them.  The range defaults to the next seven days.
func (h *AvailabilityHandler) BusySlots(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if _, err := h.Rooms.GetByID(c.Request().Context(), id); err != nil {
		return jsonError(c, err)
	}
	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 0, 7)
	if v := c.QueryParam("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
	}
	if !to.After(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be after from"})
	}
	busy, err := h.Bookings.BusySlots(c.Request().Context(), id, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "busy": busy})
}
