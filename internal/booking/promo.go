package booking

import (
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// ValidatePromo evaluates a campaign against a candidate order amount.
// Rules run in a fixed order and short-circuit on the first failure:
// the campaign must be active, now must fall inside the validity
// window, the usage cap must not be reached, and the amount must meet
// the campaign minimum.  On success it returns the discount in cents,
// never exceeding the amount itself.
//
// Validation alone never consumes a redemption; the usage counter is
// incremented separately via Tx.ConsumePromo inside the transaction
// that commits the booking, so an aborted booking leaves the counter
// untouched.
func ValidatePromo(c *model.PromoCampaign, amountCents int64, now time.Time) (int64, error) {
	if c == nil || !c.Active {
		return 0, ErrPromoInvalid
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return 0, ErrPromoExpired
	}
	if c.UsedCount >= c.UsageCap {
		return 0, ErrPromoExhausted
	}
	if amountCents < c.MinAmountCents {
		return 0, ErrPromoBelowMinimum
	}

	var discount int64
	switch c.Type {
	case model.DiscountPercentage:
		discount = amountCents * int64(c.Percent) / 100
	case model.DiscountFixed:
		discount = c.ValueCents
	default:
		return 0, ErrPromoInvalid
	}
	// A discount can never push the final amount below zero.
	if discount > amountCents {
		discount = amountCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}
