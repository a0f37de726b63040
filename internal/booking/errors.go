// Package booking implements the booking and payment settlement engine:
// capacity reservation, promo evaluation, pricing, booking graph
// persistence and payment settlement.  Handlers translate the sentinel
// errors defined here into (success, message) responses; none of them
// is ever surfaced to a caller as a raw fault.
package booking

import "errors"

// Expected business outcomes.  Handlers should map these to a
// success=false response with a human-readable message.
var (
	// ErrEventNotBookable is returned when the event does not exist,
	// is not published, or has already started.
	ErrEventNotBookable = errors.New("event is not open for booking")

	// ErrInsufficientCapacity is returned when a category cannot cover
	// the requested quantity.  The whole booking is aborted.
	ErrInsufficientCapacity = errors.New("not enough tickets left")

	// Promo validation failures, in rule order.
	ErrPromoInvalid      = errors.New("promo code is not valid")
	ErrPromoExpired      = errors.New("promo code has expired")
	ErrPromoExhausted    = errors.New("promo code has been fully redeemed")
	ErrPromoBelowMinimum = errors.New("order total is below the promo minimum")

	// ErrInvalidInstrument is returned when the payment instrument
	// fails shape validation.  The booking stays pending and the
	// caller may retry settlement.
	ErrInvalidInstrument = errors.New("payment details are invalid")

	// ErrBookingNotPending is returned when settling a cancelled (or
	// otherwise non-pending) booking.
	ErrBookingNotPending = errors.New("booking is not awaiting payment")

	// ErrAlreadySettled is returned when settling a booking that has
	// already been confirmed.  Settlement succeeds at most once.
	ErrAlreadySettled = errors.New("booking has already been paid")

	// ErrBookingNotFound is returned when the booking does not exist
	// or belongs to a different customer.
	ErrBookingNotFound = errors.New("booking not found")
)
