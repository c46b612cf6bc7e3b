package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

// AdminHandler serves the staff-only endpoints: booking edits, admin
// cancellations, courtesy bookings and manual credit grants.  Routes using
// it must sit behind RequireRole("ADMIN"); the engine re-checks the role on
// every entry point regardless.
type AdminHandler struct {
	Engine   *engine.Engine
	Bookings *repository.BookingRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(eng *engine.Engine, bookings *repository.BookingRepo) *AdminHandler {
	if eng == nil || bookings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: eng, Bookings: bookings}
}

// Edit handles PATCH /v1/admin/bookings/:id.  Only window changes are
// accepted; a status field set to CANCELLED is rejected with a pointer to
// the cancel endpoint.
func (h *AdminHandler) Edit(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		Status    *string    `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Engine.AdminEdit(c.Request().Context(), actor, id, engine.EditInput{
		Start:  body.StartTime,
		End:    body.EndTime,
		Status: body.Status,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":     viewOf(res.Booking),
		"adjustment":  res.Adjustment,
		"delta_cents": res.DeltaCents,
	})
}

// Cancel handles POST /v1/admin/bookings/:id/cancel.
func (h *AdminHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	res, err := h.Engine.Cancel(c.Request().Context(), actor, id, model.ReasonAdminRequest)
	if err != nil {
		return jsonError(c, err)
	}
	publishCancelled(c, h.Bookings, id, model.ReasonAdminRequest, res)
	return c.JSON(http.StatusOK, echo.Map{
		"cancelled":              !res.AlreadyCancelled,
		"credits_restored_cents": res.CreditsRestoredCents,
		"credit_minted_cents":    res.CreditMintedCents,
		"coupon_restored":        res.CouponRestored,
	})
}

// CreateCourtesy handles POST /v1/admin/bookings/courtesy.  A courtesy
// booking reserves the slot for a given user with no financial impact.
func (h *AdminHandler) CreateCourtesy(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		UserID    uint64    `json:"user_id"`
		RoomID    uint64    `json:"room_id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.UserID == 0 || body.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and room_id are required"})
	}
	// The booking is created on behalf of the target user but authorized by
	// the admin session's role.
	beneficiary := engine.Actor{UserID: body.UserID, Email: actor.Email, Role: actor.Role}
	res, err := h.Engine.Create(c.Request().Context(), beneficiary, engine.CreateInput{
		RoomID:   body.RoomID,
		Start:    body.StartTime,
		End:      body.EndTime,
		Courtesy: true,
	})
	if err != nil {
		return jsonError(c, err)
	}
	publishIfConfirmed(c, res.Booking, 0)
	return c.JSON(http.StatusCreated, echo.Map{"booking": viewOf(res.Booking)})
}

// GrantCredit handles POST /v1/admin/credits.  Mints a MANUAL, PROMO or
// SUBLET credit for a user.
func (h *AdminHandler) GrantCredit(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		UserID      uint64     `json:"user_id"`
		AmountCents int64      `json:"amount_cents"`
		Type        string     `json:"type"`
		Usage       string     `json:"usage"`
		RoomID      *uint64    `json:"room_id"`
		Saturday    bool       `json:"saturday"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	ctype := model.CreditManual
	switch body.Type {
	case "", string(model.CreditManual):
	case string(model.CreditPromo):
		ctype = model.CreditPromo
	case string(model.CreditSublet):
		ctype = model.CreditSublet
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credit type"})
	}
	cr, err := h.Engine.GrantCredit(c.Request().Context(), actor, engine.GrantInput{
		UserID:      body.UserID,
		AmountCents: body.AmountCents,
		Type:        ctype,
		Usage:       model.UsageType(body.Usage),
		RoomID:      body.RoomID,
		Saturday:    body.Saturday,
		ExpiresAt:   body.ExpiresAt,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"credit_id": cr.ID, "remaining_cents": cr.RemainingCents})
}
