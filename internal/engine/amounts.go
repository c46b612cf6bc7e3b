package engine

import "time"

// Amounts is the monetary breakdown of a booking.  Invariants:
// Gross = Net + Discount and ToPay = Net - CreditsUsed >= 0.
type Amounts struct {
	Gross       int64
	Discount    int64
	Net         int64
	CreditsUsed int64
	ToPay       int64
}

// ComputeAmounts derives the breakdown from the gross price, the credits
// already consumed against it, and an optional percentage discount.  The
// discount applies to the remainder left after credits and is rounded to
// the nearest cent, so a coupon can never push the amount to pay negative.
func ComputeAmounts(grossCents, creditsUsedCents int64, percentOff int) Amounts {
	if creditsUsedCents > grossCents {
		creditsUsedCents = grossCents
	}
	remainder := grossCents - creditsUsedCents
	var discount int64
	if percentOff > 0 {
		discount = (remainder*int64(percentOff) + 50) / 100
		if discount > remainder {
			discount = remainder
		}
	}
	return Amounts{
		Gross:       grossCents,
		Discount:    discount,
		Net:         grossCents - discount,
		CreditsUsed: creditsUsedCents,
		ToPay:       remainder - discount,
	}
}

// RefundEligible reports whether cancelling now, ahead of the given start
// time, converts the booking's value into a new credit.  Cancellations
// inside the window still release the slot but yield no financial reversal.
func RefundEligible(now, start time.Time, window time.Duration) bool {
	return start.Sub(now) >= window
}
