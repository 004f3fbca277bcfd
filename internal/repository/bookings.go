package repository

import (
	"context"
	"database/sql"

	"grabyourtickets/internal/database"
	"grabyourtickets/internal/models"

	"github.com/lib/pq"
)

const bookingColumns = `id, user_id, show_id, seat_ids, total_amount, status, booking_date, created_at, updated_at`

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(s rowScanner) (models.Booking, error) {
	var booking models.Booking
	var seatIDs pq.StringArray
	err := s.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&seatIDs,
		&booking.TotalAmount,
		&booking.Status,
		&booking.BookingDate,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	booking.SeatIDs = []string(seatIDs)
	return booking, err
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, show_id, seat_ids, total_amount, status, booking_date)
		VALUES ($1, $2, $3, $4::uuid[], $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ShowID,
		pq.Array(booking.SeatIDs),
		booking.TotalAmount,
		booking.Status,
		booking.BookingDate,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, userID)
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	return r.queryBookings(ctx, query)
}

// CancelIfConfirmed moves a CONFIRMED booking to CANCELLED. It reports false
// when the booking is missing or not CONFIRMED.
func (r *BookingRepository) CancelIfConfirmed(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND status = 'CONFIRMED'`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAndRelease removes a booking and frees its seats in one transaction.
// Seats held by another CONFIRMED booking stay BOOKED. It reports false when
// the booking no longer exists.
func (r *BookingRepository) DeleteAndRelease(ctx context.Context, id string, seatIDs []string) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true

		_, err = releaseSeats(ctx, tx, seatIDs)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
