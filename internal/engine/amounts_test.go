package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/engine"
)

func TestComputeAmountsPlain(t *testing.T) {
	a := engine.ComputeAmounts(3999, 0, 0)
	assert.Equal(t, int64(3999), a.Gross)
	assert.Equal(t, int64(0), a.Discount)
	assert.Equal(t, int64(3999), a.Net)
	assert.Equal(t, int64(3999), a.ToPay)
}

func TestComputeAmountsCoupon(t *testing.T) {
	// 10% off 3999 rounds to 400, leaving 3599 to pay
	a := engine.ComputeAmounts(3999, 0, 10)
	assert.Equal(t, int64(400), a.Discount)
	assert.Equal(t, int64(3599), a.Net)
	assert.Equal(t, int64(3599), a.ToPay)
	assert.Equal(t, a.Gross, a.Net+a.Discount)
}

func TestComputeAmountsCreditsThenCoupon(t *testing.T) {
	// the discount applies to the remainder after credits
	a := engine.ComputeAmounts(10000, 4000, 10)
	assert.Equal(t, int64(4000), a.CreditsUsed)
	assert.Equal(t, int64(600), a.Discount)
	assert.Equal(t, int64(9400), a.Net)
	assert.Equal(t, int64(5400), a.ToPay)
	assert.Equal(t, a.ToPay, a.Net-a.CreditsUsed)
}

func TestComputeAmountsCreditsCoverEverything(t *testing.T) {
	a := engine.ComputeAmounts(5000, 5000, 15)
	assert.Equal(t, int64(0), a.Discount, "no remainder, nothing to discount")
	assert.Equal(t, int64(0), a.ToPay)

	// over-supplied credits are clamped to the gross
	a = engine.ComputeAmounts(5000, 9000, 0)
	assert.Equal(t, int64(5000), a.CreditsUsed)
	assert.Equal(t, int64(0), a.ToPay)
}

func TestComputeAmountsFullDiscount(t *testing.T) {
	a := engine.ComputeAmounts(2500, 0, 100)
	assert.Equal(t, int64(2500), a.Discount)
	assert.Equal(t, int64(0), a.Net)
	assert.Equal(t, int64(0), a.ToPay)
}

func TestComputeAmountsNeverNegative(t *testing.T) {
	for _, gross := range []int64{1, 99, 100, 3999, 100000} {
		for _, used := range []int64{0, 50, gross, gross + 1} {
			for _, pct := range []int{0, 1, 10, 50, 99, 100} {
				a := engine.ComputeAmounts(gross, used, pct)
				assert.GreaterOrEqual(t, a.ToPay, int64(0))
				assert.Equal(t, a.Gross, a.Net+a.Discount)
			}
		}
	}
}

func TestRefundEligible(t *testing.T) {
	now := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	assert.True(t, engine.RefundEligible(now, now.Add(25*time.Hour), window))
	assert.True(t, engine.RefundEligible(now, now.Add(24*time.Hour), window), "boundary is inclusive")
	assert.False(t, engine.RefundEligible(now, now.Add(23*time.Hour), window))
	assert.False(t, engine.RefundEligible(now, now.Add(-time.Hour), window))
}
