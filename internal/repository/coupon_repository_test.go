package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthemi/roombook/internal/model"
	"github.com/arthemi/roombook/internal/repository"
)

func TestResolveClaimRestoredRowIsReclaimable(t *testing.T) {
	other := uint64(11)
	mode, err := repository.ResolveClaim(model.CouponRestored, &other, 42)
	assert.NoError(t, err)
	assert.Equal(t, repository.ClaimRestored, mode)
}

func TestResolveClaimIdempotentRetry(t *testing.T) {
	same := uint64(42)
	mode, err := repository.ResolveClaim(model.CouponUsed, &same, 42)
	assert.NoError(t, err)
	assert.Equal(t, repository.ClaimIdempotent, mode)
}

func TestResolveClaimHeldByAnotherBooking(t *testing.T) {
	other := uint64(11)
	_, err := repository.ResolveClaim(model.CouponUsed, &other, 42)
	assert.ErrorIs(t, err, repository.ErrCouponAlreadyUsed)
}

func TestResolveClaimMissingHolder(t *testing.T) {
	// A USED row without a booking reference should never exist; treat it as
	// taken rather than silently granting the claim.
	_, err := repository.ResolveClaim(model.CouponUsed, nil, 42)
	assert.ErrorIs(t, err, repository.ErrCouponAlreadyUsed)
}
