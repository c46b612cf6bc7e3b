package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arthemi/roombook/internal/sweeper"
)

// SweepHandler exposes the expiry sweep to an external scheduler.  The
// endpoint is guarded by a shared secret header instead of a JWT so a plain
// cron curl can drive it.
type SweepHandler struct {
	Sweeper *sweeper.Sweeper
	Secret  string
}

// NewSweepHandler constructs a SweepHandler.  An empty secret disables the
// endpoint entirely.
func NewSweepHandler(s *sweeper.Sweeper, secret string) *SweepHandler {
	if s == nil {
		panic("nil sweeper passed to NewSweepHandler")
	}
	return &SweepHandler{Sweeper: s, Secret: secret}
}

// Run handles POST /internal/sweep.
func (h *SweepHandler) Run(c echo.Context) error {
	if h.Secret == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	got := c.Request().Header.Get("X-Sweep-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	n, err := h.Sweeper.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": n})
}
