package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/queue"
	"github.com/arthemi/roombook/internal/repository"
	queue_publisher "github.com/arthemi/roombook/internal/service"
)

// BookingHandler serves the customer booking endpoints.  All methods assume
// JWT authentication has already run; the engine enforces ownership and role
// rules a second time, so a handler bug can never widen access.
type BookingHandler struct {
	Engine   *engine.Engine
	Bookings *repository.BookingRepo
	Credits  *repository.CreditRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must be
// non-nil.
func NewBookingHandler(eng *engine.Engine, bookings *repository.BookingRepo, credits *repository.CreditRepo) *BookingHandler {
	if eng == nil || bookings == nil || credits == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, Bookings: bookings, Credits: credits}
}

// bookingView is the wire representation of a booking.
type bookingView struct {
	ID               uint64  `json:"id"`
	RoomID           uint64  `json:"room_id"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Status           string  `json:"status"`
	FinancialStatus  string  `json:"financial_status"`
	GrossCents       int64   `json:"gross_cents"`
	DiscountCents    int64   `json:"discount_cents"`
	NetCents         int64   `json:"net_cents"`
	CreditsUsedCents int64   `json:"credits_used_cents"`
	AmountToPayCents int64   `json:"amount_to_pay_cents"`
	CouponCode       *string `json:"coupon_code,omitempty"`
	ExpiresAt        *string `json:"expires_at,omitempty"`
	CancelReason     *string `json:"cancel_reason,omitempty"`
}

func viewOf(b *model.Booking) bookingView {
	v := bookingView{
		ID:               b.ID,
		RoomID:           b.RoomID,
		StartTime:        b.StartTime.Format(time.RFC3339),
		EndTime:          b.EndTime.Format(time.RFC3339),
		Status:           string(b.Status),
		FinancialStatus:  string(b.Financial),
		GrossCents:       b.GrossAmountCents,
		DiscountCents:    b.DiscountAmountCents,
		NetCents:         b.NetAmountCents,
		CreditsUsedCents: b.CreditsUsedCents,
		AmountToPayCents: b.AmountToPayCents(),
		CouponCode:       b.CouponCode,
		CancelReason:     b.CancelReason,
	}
	if b.ExpiresAt != nil {
		s := b.ExpiresAt.Format(time.RFC3339)
		v.ExpiresAt = &s
	}
	return v
}

// Create handles POST /v1/bookings.  The body carries the room, the window
// and the optional credit/coupon instructions; everything transactional
// happens inside the engine.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RoomID     uint64    `json:"room_id"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
		UseCredits bool      `json:"use_credits"`
		CouponCode string    `json:"coupon_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 || body.StartTime.IsZero() || body.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id, start_time and end_time are required"})
	}

	res, err := h.Engine.Create(c.Request().Context(), actor, engine.CreateInput{
		RoomID:     body.RoomID,
		Start:      body.StartTime,
		End:        body.EndTime,
		UseCredits: body.UseCredits,
		CouponCode: body.CouponCode,
	})
	if err != nil {
		return jsonError(c, err)
	}
	publishIfConfirmed(c, res.Booking, res.CreditsUsedCents)
	return c.JSON(http.StatusCreated, echo.Map{
		"booking":            viewOf(res.Booking),
		"credits_used_cents": res.CreditsUsedCents,
		"credit_ids":         res.CreditIDs,
		"amount_to_pay":      res.AmountToPayCents,
		"payment_url":        res.PaymentURL,
	})
}

// Cancel handles POST /v1/bookings/:id/cancel.  Re-cancelling an already
// cancelled booking returns 200 with cancelled=false.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	res, err := h.Engine.Cancel(c.Request().Context(), actor, id, model.ReasonUserRequest)
	if err != nil {
		return jsonError(c, err)
	}
	publishCancelled(c, h.Bookings, id, model.ReasonUserRequest, res)
	return c.JSON(http.StatusOK, echo.Map{
		"cancelled":              !res.AlreadyCancelled,
		"credits_restored_cents": res.CreditsRestoredCents,
		"credit_minted_cents":    res.CreditMintedCents,
		"coupon_restored":        res.CouponRestored,
	})
}

// List handles GET /v1/bookings and returns the caller's bookings, newest
// first.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]bookingView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": views})
}

// Get handles GET /v1/bookings/:id.  Customers may only read their own
// bookings; admins may read any.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	if actor.Role != engine.RoleAdmin && b.UserID != actor.UserID {
		return jsonError(c, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, viewOf(b))
}

// CreditBalance handles GET /v1/credits/balance.  With room_id, start_time
// and end_time query parameters the balance is restricted to credits
// spendable on that exact slot.
func (h *BookingHandler) CreditBalance(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var roomID uint64
	var start, end time.Time
	if v := c.QueryParam("room_id"); v != "" {
		if roomID, err = parseUintParam(v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		start, err = time.Parse(time.RFC3339, c.QueryParam("start_time"))
		if err == nil {
			end, err = time.Parse(time.RFC3339, c.QueryParam("end_time"))
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time are required with room_id"})
		}
	}
	total, err := h.Engine.Balance(c.Request().Context(), actor.UserID, roomID, start, end)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"balance_cents": total})
}

// CreditList handles GET /v1/credits and returns every credit row of the
// caller, spent or not, for ledger transparency.
func (h *BookingHandler) CreditList(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	credits, err := h.Credits.ListByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type creditView struct {
		ID             uint64  `json:"id"`
		AmountCents    int64   `json:"amount_cents"`
		RemainingCents int64   `json:"remaining_cents"`
		Type           string  `json:"type"`
		Usage          string  `json:"usage"`
		Status         string  `json:"status"`
		RoomID         *uint64 `json:"room_id,omitempty"`
		Saturday       bool    `json:"saturday"`
		ExpiresAt      *string `json:"expires_at,omitempty"`
	}
	views := make([]creditView, 0, len(credits))
	for i := range credits {
		cr := &credits[i]
		v := creditView{
			ID:             cr.ID,
			AmountCents:    cr.AmountCents,
			RemainingCents: cr.RemainingCents,
			Type:           string(cr.Type),
			Usage:          string(cr.Usage),
			Status:         string(cr.Status),
			RoomID:         cr.RoomID,
			Saturday:       cr.Saturday,
		}
		if cr.ExpiresAt != nil {
			s := cr.ExpiresAt.Format(time.RFC3339)
			v.ExpiresAt = &s
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"credits": views})
}

// publishIfConfirmed emits a booking.confirmed event for bookings that are
// confirmed at creation time.  Publishing is best-effort; the reservation
// already committed.
func publishIfConfirmed(c echo.Context, b *model.Booking, creditsUsed int64) {
	if b.Status != model.BookingConfirmed {
		return
	}
	_ = queue_publisher.PublishBookingConfirmed(c.Request().Context(), queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		RoomID:           b.RoomID,
		StartsAt:         b.StartTime.Format(time.RFC3339),
		EndsAt:           b.EndTime.Format(time.RFC3339),
		GrossCents:       b.GrossAmountCents,
		CreditsUsedCents: creditsUsed,
		NetCents:         b.NetAmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// publishCancelled emits a booking.cancelled event.  The booking is re-read
// for its ownership fields; failures only suppress the event.
func publishCancelled(c echo.Context, repo *repository.BookingRepo, id uint64, reason string, res *engine.CancelResult) {
	if res.AlreadyCancelled {
		return
	}
	b, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return
	}
	_ = queue_publisher.PublishBookingCancelled(c.Request().Context(), queue.BookingCancelledEvent{
		BookingID:            b.ID,
		UserID:               b.UserID,
		RoomID:               b.RoomID,
		Reason:               reason,
		CreditsRestoredCents: res.CreditsRestoredCents,
		CreditMintedCents:    res.CreditMintedCents,
		CancelledAt:          time.Now().UTC().Format(time.RFC3339),
	})
}
