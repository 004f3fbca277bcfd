package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"grabyourtickets/internal/database"
	"grabyourtickets/internal/models"

	"github.com/lib/pq"
)

// insertBatchSize keeps a multi-row insert well below the 65535 bind
// parameter limit.
const insertBatchSize = 500

const seatColumns = `id, cinema_id, show_id, hall_name, row_label, column_number, seat_number,
		       is_best_row, is_center_seat, status, created_at, updated_at`

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeat(s rowScanner) (models.Seat, error) {
	var seat models.Seat
	err := s.Scan(
		&seat.ID,
		&seat.CinemaID,
		&seat.ShowID,
		&seat.HallName,
		&seat.Row,
		&seat.Column,
		&seat.SeatNumber,
		&seat.IsBestRow,
		&seat.IsCenterSeat,
		&seat.Status,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	return seat, err
}

func (r *SeatRepository) querySeats(ctx context.Context, query string, args ...any) ([]models.Seat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]models.Seat, 0)
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// CreateBulk inserts seats as an unordered batch. Rows violating the
// (cinema, show, hall, row, column) constraint are skipped individually and
// the number of created rows is returned.
func (r *SeatRepository) CreateBulk(ctx context.Context, seats []models.Seat) (int, error) {
	created := 0
	for start := 0; start < len(seats); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(seats) {
			end = len(seats)
		}

		n, err := r.insertBatch(ctx, seats[start:end])
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (r *SeatRepository) insertBatch(ctx context.Context, seats []models.Seat) (int, error) {
	const perRow = 10
	var sb strings.Builder
	args := make([]any, 0, len(seats)*perRow)

	sb.WriteString(`INSERT INTO seats (id, cinema_id, show_id, hall_name, row_label, column_number,
		seat_number, is_best_row, is_center_seat, status) VALUES `)
	for i, s := range seats {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * perRow
		sb.WriteString("(")
		for j := 1; j <= perRow; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")
		args = append(args, s.ID, s.CinemaID, s.ShowID, s.HallName, s.Row, s.Column,
			s.SeatNumber, s.IsBestRow, s.IsCenterSeat, s.Status)
	}
	sb.WriteString(` ON CONFLICT (cinema_id, show_id, hall_name, row_label, column_number) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// List returns seats matching the non-empty filter fields ordered by row and column.
func (r *SeatRepository) List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, error) {
	var args []any
	argIndex := 1

	query := `SELECT ` + seatColumns + ` FROM seats WHERE 1=1`

	if filter.CinemaID != "" {
		query += fmt.Sprintf(" AND cinema_id = $%d", argIndex)
		args = append(args, filter.CinemaID)
		argIndex++
	}

	if filter.ShowID != "" {
		query += fmt.Sprintf(" AND show_id = $%d", argIndex)
		args = append(args, filter.ShowID)
	}

	query += " ORDER BY row_label, column_number"

	return r.querySeats(ctx, query, args...)
}

func (r *SeatRepository) ListByHall(ctx context.Context, scope models.HallScope) ([]models.Seat, error) {
	query := `SELECT ` + seatColumns + `
		FROM seats
		WHERE cinema_id = $1 AND show_id = $2 AND hall_name = $3
		ORDER BY row_label, column_number`

	return r.querySeats(ctx, query, scope.CinemaID, scope.ShowID, scope.HallName)
}

func (r *SeatRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Seat, error) {
	query := `SELECT ` + seatColumns + `
		FROM seats
		WHERE id = ANY($1::uuid[])
		ORDER BY row_label, column_number`

	return r.querySeats(ctx, query, pq.Array(ids))
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*models.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`

	seat, err := scanSeat(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// Update applies a partial update. seat_number follows row and column when
// both are supplied.
func (r *SeatRepository) Update(ctx context.Context, id string, upd models.SeatUpdate) (*models.Seat, error) {
	var sets []string
	var args []any
	argIndex := 1

	if upd.Row != nil {
		sets = append(sets, fmt.Sprintf("row_label = $%d", argIndex))
		args = append(args, *upd.Row)
		argIndex++
	}
	if upd.Column != nil {
		sets = append(sets, fmt.Sprintf("column_number = $%d", argIndex))
		args = append(args, *upd.Column)
		argIndex++
	}
	if upd.Row != nil && upd.Column != nil {
		sets = append(sets, fmt.Sprintf("seat_number = $%d", argIndex))
		args = append(args, fmt.Sprintf("%s%d", *upd.Row, *upd.Column))
		argIndex++
	}
	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *upd.Status)
		argIndex++
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE seats SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+seatColumns,
		strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	seat, err := scanSeat(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *SeatRepository) DeleteByHall(ctx context.Context, scope models.HallScope) (int64, error) {
	query := `DELETE FROM seats WHERE cinema_id = $1 AND show_id = $2 AND hall_name = $3`

	res, err := r.db.ExecContext(ctx, query, scope.CinemaID, scope.ShowID, scope.HallName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetStatusIfAvailable flips one seat of the show in a single conditional
// statement. It returns nil, nil when the seat is missing, belongs to another
// show or is no longer AVAILABLE.
func (r *SeatRepository) SetStatusIfAvailable(ctx context.Context, id, showID, status string) (*models.Seat, error) {
	query := `
		UPDATE seats SET status = $1, updated_at = NOW()
		WHERE id = $2 AND show_id = $3 AND status = 'AVAILABLE'
		RETURNING ` + seatColumns

	seat, err := scanSeat(r.db.QueryRowContext(ctx, query, status, id, showID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// releaseSeatsQuery frees seats that no CONFIRMED booking references. A seat
// freed by a cancellation may have been sold again, and that sale must keep it.
const releaseSeatsQuery = `
	UPDATE seats SET status = 'AVAILABLE', updated_at = NOW()
	WHERE id = ANY($1::uuid[])
	  AND NOT EXISTS (
		SELECT 1 FROM bookings b
		WHERE b.status = 'CONFIRMED' AND seats.id = ANY(b.seat_ids)
	  )`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func releaseSeats(ctx context.Context, db execer, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := db.ExecContext(ctx, releaseSeatsQuery, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReleaseSeats sets the given seats back to AVAILABLE unless a CONFIRMED
// booking still holds them.
func (r *SeatRepository) ReleaseSeats(ctx context.Context, ids []string) (int64, error) {
	return releaseSeats(ctx, r.db, ids)
}
