package engine_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/engine"
	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/payment"
	"github.com/arthemi/roombook/internal/pricing"
	"github.com/arthemi/roombook/internal/repository"
)

// grantEngine builds an engine whose validation paths run before any query,
// so the database handle is never touched.
func grantEngine() *engine.Engine {
	return engine.New(&sql.DB{},
		repository.NewRoomRepo(nil), repository.NewBookingRepo(nil),
		repository.NewCreditRepo(nil), repository.NewCouponRepo(nil), repository.NewPaymentRepo(nil),
		payment.LogGateway{}, pricing.HourlyQuoter{}, engine.Config{})
}

func TestGrantCreditRejectsNonAdmin(t *testing.T) {
	eng := grantEngine()
	_, err := eng.GrantCredit(context.Background(), engine.Actor{UserID: 7, Role: engine.RoleCustomer},
		engine.GrantInput{UserID: 7, AmountCents: 1000, Type: model.CreditManual})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestGrantCreditRejectsNonPositiveAmount(t *testing.T) {
	eng := grantEngine()
	admin := engine.Actor{UserID: 1, Role: engine.RoleAdmin}
	for _, amount := range []int64{0, -500} {
		_, err := eng.GrantCredit(context.Background(), admin,
			engine.GrantInput{UserID: 7, AmountCents: amount, Type: model.CreditManual})
		assert.ErrorIs(t, err, engine.ErrInvalidAmount)
	}
}

func TestGrantCreditRejectsUnknownUsageType(t *testing.T) {
	eng := grantEngine()
	admin := engine.Actor{UserID: 1, Role: engine.RoleAdmin}
	// A typo must be rejected up front, not handed to the database's ENUM
	// column to fail opaquely or mint an unspendable credit.
	_, err := eng.GrantCredit(context.Background(), admin, engine.GrantInput{
		UserID: 7, AmountCents: 1000, Type: model.CreditManual, Usage: "HOURLYY",
	})
	assert.ErrorIs(t, err, engine.ErrInvalidUsageType)
}

func TestUsageTypeValid(t *testing.T) {
	for _, u := range []model.UsageType{
		model.UsageLegacy, model.UsageHourly, model.UsageShift,
		model.UsageSaturdayHourly, model.UsageSaturdayShift,
	} {
		assert.True(t, u.Valid(), string(u))
	}
	assert.False(t, model.UsageType("").Valid())
	assert.False(t, model.UsageType("HOURLYY").Valid())
	assert.False(t, model.UsageType("hourly").Valid())
}
