// Package repository holds the MySQL data access layer: the booking
// engine's transactional store plus read-side repositories for events,
// bookings, tickets, users and refresh tokens.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/booking"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// SQLStore is the MySQL-backed implementation of the booking engine's
// persistence boundary.  Every engine operation runs inside one
// database transaction so that capacity increments, promo redemptions
// and the booking graph commit or roll back as a unit.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a SQLStore bound to the given database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Begin opens a new engine transaction.
func (s *SQLStore) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// sqlTx wraps one *sql.Tx for the duration of a booking operation.
type sqlTx struct {
	tx *sql.Tx
}

// EventForBooking loads the event row and its ticket categories.  A
// missing event surfaces as ErrEventNotBookable; the orchestrator does
// not distinguish "absent" from "not yet published".
func (t *sqlTx) EventForBooking(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, organizer_id, venue_id, name, starts_at, ends_at, status, created_at, updated_at
	           FROM events WHERE id = ?`
	var ev model.Event
	err := t.tx.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.OrganizerID, &ev.VenueID, &ev.Name,
		&ev.StartsAt, &ev.EndsAt, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrEventNotBookable
		}
		return nil, err
	}

	const catQ = `SELECT id, event_id, name, price_cents, total, sold, created_at, updated_at
	              FROM ticket_categories WHERE event_id = ? ORDER BY id`
	rows, err := t.tx.QueryContext(ctx, catQ, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.TicketCategory
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.PriceCents, &c.Total, &c.Sold, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		ev.Categories = append(ev.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ReapStalePending cancels PENDING bookings for the event created
// before the cutoff and returns their capacity to the categories.  It
// mirrors the inline hold-expiry discipline: reaping happens inside
// the same transaction that is about to reserve, so a reclaimed seat
// is immediately available to the current customer.
//
// The locking read serializes rival reapers and waits out a settlement
// holding the booking row, and the conditional UPDATE decides
// ownership: only the transaction whose UPDATE flips PENDING to
// CANCELLED releases the reservation, so capacity is handed back at
// most once per booking and a booking confirmed in the meantime is
// left alone.
func (t *sqlTx) ReapStalePending(ctx context.Context, eventID uint64, cutoff time.Time) (int, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM bookings WHERE event_id = ? AND status = 'PENDING' AND created_at <= ? FOR UPDATE`,
		eventID, cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return 0, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Close(); err != nil {
		return 0, err
	}

	reaped := 0
	for _, id := range ids {
		res, err := t.tx.ExecContext(ctx,
			`UPDATE bookings SET status = 'CANCELLED', updated_at = UTC_TIMESTAMP()
			 WHERE id = ? AND status = 'PENDING'`,
			id,
		)
		if err != nil {
			return reaped, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return reaped, err
		}
		if n == 0 {
			// Another transaction settled or reaped this booking after
			// our candidate scan; its capacity is not ours to release.
			continue
		}

		qtyRows, err := t.tx.QueryContext(ctx,
			`SELECT category_id, quantity FROM booking_details WHERE booking_id = ?`, id,
		)
		if err != nil {
			return reaped, err
		}
		type catQty struct {
			categoryID uint64
			qty        uint32
		}
		var quantities []catQty
		for qtyRows.Next() {
			var cq catQty
			if scanErr := qtyRows.Scan(&cq.categoryID, &cq.qty); scanErr != nil {
				qtyRows.Close()
				return reaped, scanErr
			}
			quantities = append(quantities, cq)
		}
		if err = qtyRows.Close(); err != nil {
			return reaped, err
		}
		for _, cq := range quantities {
			if err := t.ReleaseCapacity(ctx, cq.categoryID, cq.qty); err != nil {
				return reaped, err
			}
		}
		reaped++
	}
	return reaped, nil
}

// ReserveCapacity is the capacity ledger's atomic decrement-or-reject.
// The availability check and the increment of sold happen in one
// conditional UPDATE, so two transactions racing for the last ticket
// can never both see a row affected.
func (t *sqlTx) ReserveCapacity(ctx context.Context, categoryID uint64, qty uint32) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE ticket_categories SET sold = sold + ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND sold + ? <= total`,
		qty, categoryID, qty,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrInsufficientCapacity
	}
	return nil
}

// ReleaseCapacity hands reserved capacity back.  The sold >= ? guard
// keeps a buggy double-release from driving the counter negative.
func (t *sqlTx) ReleaseCapacity(ctx context.Context, categoryID uint64, qty uint32) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE ticket_categories SET sold = sold - ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND sold >= ?`,
		qty, categoryID, qty,
	)
	return err
}

// PromoByCode loads a campaign by code.  Unknown codes surface as
// ErrPromoInvalid so handlers never leak which codes exist.
func (t *sqlTx) PromoByCode(ctx context.Context, code string) (*model.PromoCampaign, error) {
	const q = `SELECT id, code, discount_type, value_cents, percent, min_amount_cents,
	                  valid_from, valid_to, usage_cap, used_count, active, created_at, updated_at
	           FROM promo_campaigns WHERE code = ?`
	var c model.PromoCampaign
	err := t.tx.QueryRowContext(ctx, q, strings.TrimSpace(code)).Scan(
		&c.ID, &c.Code, &c.Type, &c.ValueCents, &c.Percent, &c.MinAmountCents,
		&c.ValidFrom, &c.ValidTo, &c.UsageCap, &c.UsedCount, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrPromoInvalid
		}
		return nil, err
	}
	return &c, nil
}

// ConsumePromo spends one redemption with the same atomic-increment
// discipline as capacity: the cap check and the increment are a single
// conditional UPDATE.
func (t *sqlTx) ConsumePromo(ctx context.Context, campaignID uint64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE promo_campaigns SET used_count = used_count + 1, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND used_count < usage_cap`,
		campaignID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrPromoExhausted
	}
	return nil
}

// CreateBooking inserts the booking row and populates its ID.
func (t *sqlTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (reference, customer_id, event_id, status, payment_status,
		                       promo_code, total_cents, discount_cents, final_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.CustomerID, b.EventID, b.Status, b.PaymentStatus,
		b.PromoCode, b.TotalCents, b.DiscountCents, b.FinalCents,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateDetails inserts the booking's lines one by one so each record
// gets its generated ID back; tickets reference these IDs.
func (t *sqlTx) CreateDetails(ctx context.Context, details []model.BookingDetail) error {
	const q = `INSERT INTO booking_details (booking_id, category_id, quantity, unit_price_cents, line_total_cents)
	           VALUES (?, ?, ?, ?, ?)`
	for i := range details {
		d := &details[i]
		res, err := t.tx.ExecContext(ctx, q, d.BookingID, d.CategoryID, d.Quantity, d.UnitPriceCents, d.LineTotalCents)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		d.ID = uint64(id)
	}
	return nil
}

// CreateTickets bulk-inserts tickets in a single statement.  Passing an
// empty slice has no effect and returns nil.
func (t *sqlTx) CreateTickets(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (detail_id, number, qr_payload, used) VALUES `
	args := make([]interface{}, 0, len(tickets)*4)
	for i, tk := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, tk.DetailID, tk.Number, tk.QRPayload, tk.Used)
	}
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

// BookingByID loads a booking owned by the given customer, locking the
// row so racing settlements serialize on it.
func (t *sqlTx) BookingByID(ctx context.Context, bookingID, customerID uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, customer_id, event_id, status, payment_status,
	                  promo_code, total_cents, discount_cents, final_cents, payment_txn_id,
	                  created_at, updated_at
	           FROM bookings WHERE id = ? AND customer_id = ? FOR UPDATE`
	var b model.Booking
	var promoCode, txnID sql.NullString
	err := t.tx.QueryRowContext(ctx, q, bookingID, customerID).Scan(
		&b.ID, &b.Reference, &b.CustomerID, &b.EventID, &b.Status, &b.PaymentStatus,
		&promoCode, &b.TotalCents, &b.DiscountCents, &b.FinalCents, &txnID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	if promoCode.Valid {
		code := promoCode.String
		b.PromoCode = &code
	}
	if txnID.Valid {
		id := txnID.String
		b.PaymentTxnID = &id
	}
	return &b, nil
}

// ConfirmBooking performs the settlement transition.  Conditioning the
// UPDATE on status = PENDING makes settlement exactly-once even if two
// settle calls slip past the row lock on different connections.
func (t *sqlTx) ConfirmBooking(ctx context.Context, bookingID uint64, txnID string) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CONFIRMED', payment_status = 'COMPLETED',
		        payment_txn_id = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = 'PENDING'`,
		txnID, bookingID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrAlreadySettled
	}
	return nil
}

// MarkPaymentFailed records a failed attempt without leaving PENDING.
func (t *sqlTx) MarkPaymentFailed(ctx context.Context, bookingID uint64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET payment_status = 'FAILED', updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = 'PENDING'`,
		bookingID,
	)
	return err
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
