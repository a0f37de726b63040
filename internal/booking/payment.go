package booking

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// PaymentInstrument is the card data submitted for settlement.  Only
// its shape is validated; no real authorization ever happens.
type PaymentInstrument struct {
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"` // MM/YY
	CVV            string `json:"cvv"`
	HolderName     string `json:"holder_name"`
	BillingAddress string `json:"billing_address"`
}

// Validate checks the instrument's shape: 13-19 card digits, an MM/YY
// expiry that is not in the past, a 3-4 digit CVV and non-empty billing
// fields.  Spaces and dashes in the card number are tolerated.
func (p PaymentInstrument) Validate(now time.Time) error {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	if len(digits) < 13 || len(digits) > 19 {
		return ErrInvalidInstrument
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ErrInvalidInstrument
		}
	}
	if !validExpiry(p.Expiry, now) {
		return ErrInvalidInstrument
	}
	if n := len(p.CVV); n < 3 || n > 4 {
		return ErrInvalidInstrument
	}
	for _, r := range p.CVV {
		if r < '0' || r > '9' {
			return ErrInvalidInstrument
		}
	}
	if strings.TrimSpace(p.HolderName) == "" || strings.TrimSpace(p.BillingAddress) == "" {
		return ErrInvalidInstrument
	}
	return nil
}

// validExpiry parses MM/YY and reports whether the card is valid
// through the end of that month.
func validExpiry(s string, now time.Time) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	// Cards are valid through the last instant of the expiry month.
	expiresAt := time.Date(2000+year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return now.Before(expiresAt)
}

// Settlement is returned by Settle on success.
type Settlement struct {
	BookingID  uint64 `json:"booking_id"`
	Reference  string `json:"reference"`
	TxnID      string `json:"txn_id"`
	FinalCents int64  `json:"final_cents"`
}

// Settle validates the instrument and transitions the booking from
// PENDING to CONFIRMED, exactly once.  A failed validation records the
// attempt (payment_status FAILED) but leaves the booking PENDING and
// retryable; the committed capacity reservation is kept either way.
// After a successful commit the confirmation publisher is invoked
// best-effort: a delivery failure is logged and never unwinds the
// settlement.
func (e *Engine) Settle(ctx context.Context, bookingID, customerID uint64, instrument PaymentInstrument) (*Settlement, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.BookingByID(ctx, bookingID, customerID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case model.BookingPending:
		// fall through to settlement
	case model.BookingConfirmed:
		return nil, ErrAlreadySettled
	default:
		return nil, ErrBookingNotPending
	}

	if err := instrument.Validate(e.now()); err != nil {
		if markErr := tx.MarkPaymentFailed(ctx, bookingID); markErr == nil {
			if commitErr := tx.Commit(); commitErr == nil {
				committed = true
			}
		}
		return nil, err
	}

	txnID := "PAY-" + uuid.NewString()
	if err := tx.ConfirmBooking(ctx, bookingID, txnID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	b.Status = model.BookingConfirmed
	b.PaymentStatus = model.PaymentCompleted
	b.PaymentTxnID = &txnID
	if e.publisher != nil {
		if err := e.publisher.BookingConfirmed(ctx, b); err != nil {
			log.Printf("booking: confirmation publish failed for %s: %v", b.Reference, err)
		}
	}

	return &Settlement{
		BookingID:  b.ID,
		Reference:  b.Reference,
		TxnID:      txnID,
		FinalCents: b.FinalCents,
	}, nil
}
