package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/repository"
)

// getActor builds the engine actor from the claims the JWT middleware stored
// in the Echo context.  Claims arrive as interface{} values whose concrete
// type depends on the JSON decoder, hence the type switches.
func getActor(c echo.Context) (engine.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return engine.Actor{}, err
	}
	actor := engine.Actor{UserID: id, Role: engine.RoleCustomer}
	if v, ok := c.Get("role").(string); ok && v != "" {
		actor.Role = v
	}
	if v, ok := c.Get("email").(string); ok {
		actor.Email = v
	}
	return actor, nil
}

// getUserID extracts the authenticated user ID from context.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
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

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseUintParam parses a positive integer query parameter.
func parseUintParam(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid numeric parameter")
	}
	return n, nil
}

// jsonError maps domain sentinel errors to stable machine-readable codes so
// clients can branch on "code" without parsing messages.  Unknown errors
// become an opaque 500.
func jsonError(c echo.Context, err error) error {
	type mapped struct {
		status int
		code   string
	}
	var m mapped
	switch {
	case errors.Is(err, repository.ErrSlotConflict):
		m = mapped{http.StatusConflict, "CONFLICT"}
	case errors.Is(err, repository.ErrInsufficientCredit):
		m = mapped{http.StatusBadRequest, "INSUFFICIENT_CREDIT"}
	case errors.Is(err, repository.ErrCouponAlreadyUsed):
		m = mapped{http.StatusConflict, "COUPON_ALREADY_USED"}
	case errors.Is(err, repository.ErrCouponNotFound):
		m = mapped{http.StatusBadRequest, "COUPON_INVALID"}
	case errors.Is(err, repository.ErrRoomNotFound):
		m = mapped{http.StatusNotFound, "ROOM_NOT_FOUND"}
	case errors.Is(err, repository.ErrBookingNotFound):
		m = mapped{http.StatusNotFound, "BOOKING_NOT_FOUND"}
	case errors.Is(err, repository.ErrForbidden):
		m = mapped{http.StatusForbidden, "FORBIDDEN"}
	case errors.Is(err, engine.ErrInvalidWindow):
		m = mapped{http.StatusBadRequest, "INVALID_WINDOW"}
	case errors.Is(err, engine.ErrAdvanceNotice):
		m = mapped{http.StatusBadRequest, "TEMPO_INSUFICIENTE"}
	case errors.Is(err, engine.ErrBelowMinimum):
		m = mapped{http.StatusBadRequest, "PAYMENT_MIN_AMOUNT"}
	case errors.Is(err, engine.ErrBelowMinimumAfterDiscount):
		m = mapped{http.StatusBadRequest, "PAYMENT_MIN_AMOUNT_AFTER_DISCOUNT"}
	case errors.Is(err, engine.ErrDevCouponNoSession):
		m = mapped{http.StatusForbidden, "DEV_COUPON_NO_SESSION"}
	case errors.Is(err, engine.ErrPaymentFailed):
		m = mapped{http.StatusBadGateway, "PAYMENT_FAILED"}
	case errors.Is(err, engine.ErrUseCancelEndpoint):
		m = mapped{http.StatusBadRequest, "EDIT_USE_CANCEL_ENDPOINT"}
	case errors.Is(err, engine.ErrUnsupportedEdit):
		m = mapped{http.StatusBadRequest, "UNSUPPORTED_EDIT"}
	case errors.Is(err, engine.ErrBookingCancelled):
		m = mapped{http.StatusConflict, "BOOKING_CANCELLED"}
	case errors.Is(err, engine.ErrCourtesyImmutable):
		m = mapped{http.StatusBadRequest, "COURTESY_IMMUTABLE"}
	case errors.Is(err, engine.ErrInvalidAmount):
		m = mapped{http.StatusBadRequest, "INVALID_AMOUNT"}
	case errors.Is(err, engine.ErrInvalidUsageType):
		m = mapped{http.StatusBadRequest, "INVALID_USAGE_TYPE"}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(m.status, echo.Map{"code": m.code, "error": err.Error()})
}
