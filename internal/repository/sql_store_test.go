package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

// These tests exercise the store against a real MySQL server because
// the interleavings they pin down (rival reapers, a reaper racing a
// settlement) depend on InnoDB row locks and conditional UPDATEs.
// They are skipped unless TEST_MYSQL_DSN points at a disposable
// database, for example:
//
//	TEST_MYSQL_DSN='root:secret@tcp(127.0.0.1:3306)/startickets_test?parseTime=true'

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`DROP TABLE IF EXISTS booking_details`,
		`DROP TABLE IF EXISTS bookings`,
		`DROP TABLE IF EXISTS ticket_categories`,
		`CREATE TABLE ticket_categories (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			event_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(100) NOT NULL,
			price_cents BIGINT NOT NULL,
			total INT UNSIGNED NOT NULL,
			sold INT UNSIGNED NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE bookings (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			reference VARCHAR(32) NOT NULL,
			customer_id BIGINT UNSIGNED NOT NULL,
			event_id BIGINT UNSIGNED NOT NULL,
			status VARCHAR(16) NOT NULL,
			payment_status VARCHAR(16) NOT NULL,
			promo_code VARCHAR(64) NULL,
			total_cents BIGINT NOT NULL,
			discount_cents BIGINT NOT NULL,
			final_cents BIGINT NOT NULL,
			payment_txn_id VARCHAR(64) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_event_status (event_id, status)
		) ENGINE=InnoDB`,
		`CREATE TABLE booking_details (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT UNSIGNED NOT NULL,
			category_id BIGINT UNSIGNED NOT NULL,
			quantity INT UNSIGNED NOT NULL,
			unit_price_cents BIGINT NOT NULL,
			line_total_cents BIGINT NOT NULL,
			KEY idx_booking (booking_id)
		) ENGINE=InnoDB`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func seedCategory(t *testing.T, db *sql.DB, eventID uint64, total, sold uint32) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO ticket_categories (event_id, name, price_cents, total, sold) VALUES (?, 'General', 5000, ?, ?)`,
		eventID, total, sold,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func seedPendingBooking(t *testing.T, db *sql.DB, eventID, customerID, categoryID uint64, qty uint32, createdAt time.Time) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO bookings (reference, customer_id, event_id, status, payment_status,
		                       total_cents, discount_cents, final_cents, created_at)
		 VALUES ('BK-TEST000000', ?, ?, 'PENDING', 'PENDING', ?, 0, ?, ?)`,
		customerID, eventID, int64(qty)*5000, int64(qty)*5000,
		createdAt.UTC().Format("2006-01-02 15:04:05"),
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO booking_details (booking_id, category_id, quantity, unit_price_cents, line_total_cents)
		 VALUES (?, ?, ?, 5000, ?)`,
		id, categoryID, qty, int64(qty)*5000,
	)
	require.NoError(t, err)
	return uint64(id)
}

func categorySold(t *testing.T, db *sql.DB, id uint64) uint32 {
	t.Helper()
	var sold uint32
	require.NoError(t, db.QueryRow(`SELECT sold FROM ticket_categories WHERE id = ?`, id).Scan(&sold))
	return sold
}

// Two transactions reap the same event at once.  Exactly one may claim
// the stale booking and hand its seats back; a double release would
// understate sold and let later reservations exceed total.
func TestReapRivalsReleaseCapacityOnce(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	// 2 seats held by the stale booking, 2 by a settled one elsewhere.
	catID := seedCategory(t, db, 1, 10, 4)
	bookingID := seedPendingBooking(t, db, 1, 7, catID, 2, time.Now().Add(-time.Hour))
	cutoff := time.Now().Add(-30 * time.Minute)

	var wg sync.WaitGroup
	reaped := make([]int, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, err := store.Begin(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			n, err := tx.ReapStalePending(ctx, 1, cutoff)
			if err != nil {
				tx.Rollback()
				errs[i] = err
				return
			}
			reaped[i] = n
			errs[i] = tx.Commit()
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	require.Equal(t, 1, reaped[0]+reaped[1], "exactly one reaper claims the booking")
	require.Equal(t, uint32(2), categorySold(t, db, catID), "stale seats released exactly once")

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status))
	require.Equal(t, "CANCELLED", status)
}

// A settlement holds the booking row while a reaper scans the same
// event.  The reaper must wait out the row lock and then leave the
// confirmed booking and its capacity untouched.
func TestReapWaitsOutSettlementAndSkipsIt(t *testing.T) {
	db := openTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	catID := seedCategory(t, db, 1, 10, 2)
	bookingID := seedPendingBooking(t, db, 1, 7, catID, 2, time.Now().Add(-time.Hour))
	cutoff := time.Now().Add(-30 * time.Minute)

	settle, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = settle.BookingByID(ctx, bookingID, 7)
	require.NoError(t, err)
	require.NoError(t, settle.ConfirmBooking(ctx, bookingID, "PAY-itest"))

	done := make(chan struct{})
	var reaped int
	var reapErr error
	go func() {
		defer close(done)
		tx, err := store.Begin(ctx)
		if err != nil {
			reapErr = err
			return
		}
		reaped, reapErr = tx.ReapStalePending(ctx, 1, cutoff)
		if reapErr != nil {
			tx.Rollback()
			return
		}
		reapErr = tx.Commit()
	}()

	// Let the reaper hit the row lock before the settlement commits.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, settle.Commit())
	<-done
	require.NoError(t, reapErr)
	require.Equal(t, 0, reaped)

	var status, paymentStatus string
	require.NoError(t, db.QueryRow(
		`SELECT status, payment_status FROM bookings WHERE id = ?`, bookingID,
	).Scan(&status, &paymentStatus))
	require.Equal(t, "CONFIRMED", status)
	require.Equal(t, "COMPLETED", paymentStatus)
	require.Equal(t, uint32(2), categorySold(t, db, catID))
}
