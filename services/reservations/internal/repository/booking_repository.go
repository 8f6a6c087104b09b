package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/jackc/pgx/v5"
)

type bookingRepository struct {
	db dbtx
}

const bookingCols = `id, guest_name, email, phone, room_number,
check_in, check_out, nights, guest_count, purpose, special_requests,
total_amount::float8, amount_paid::float8, payment_status, status,
source, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.GuestName, &b.Email, &b.Phone, &b.RoomNumber,
		&b.CheckIn, &b.CheckOut, &b.Nights, &b.GuestCount, &b.Purpose, &b.SpecialRequests,
		&b.TotalAmount, &b.AmountPaid, &b.PaymentStatus, &b.Status,
		&b.Source, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapQuery("list bookings", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapQuery("scan booking", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings ORDER BY id`)
}

func (r *bookingRepository) ListByRoom(ctx context.Context, roomNumber string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings WHERE room_number=$1 ORDER BY id`, roomNumber)
}

func (r *bookingRepository) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.BookingNotFoundError{ID: id}
	}
	if err != nil {
		return nil, wrapQuery("get booking", err)
	}
	return b, nil
}

func (r *bookingRepository) Append(ctx context.Context, b *domain.Booking) (int64, error) {
	const q = `INSERT INTO bookings (
		guest_name, email, phone, room_number,
		check_in, check_out, nights, guest_count, purpose, special_requests,
		total_amount, amount_paid, payment_status, status, source, notes
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	RETURNING id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, q,
		b.GuestName, b.Email, b.Phone, b.RoomNumber,
		b.CheckIn, b.CheckOut, b.Nights, b.GuestCount, b.Purpose, b.SpecialRequests,
		b.TotalAmount, b.AmountPaid, b.PaymentStatus, b.Status, b.Source, b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isExclusionViolation(err) {
		return 0, &domain.RoomUnavailableError{Number: b.RoomNumber, Range: b.Stay()}
	}
	if err != nil {
		return 0, wrapQuery("insert booking", err)
	}
	return b.ID, nil
}

// Update writes the patch with a status guard in the WHERE clause, so two
// callers racing on the same transition cannot both succeed.
func (r *bookingRepository) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := current.Status
	if patch.IfStatus != nil {
		if current.Status != *patch.IfStatus {
			return nil, domain.ErrStatusChanged
		}
		expected = *patch.IfStatus
	}
	patch.Apply(current, time.Now().UTC())

	const q = `UPDATE bookings SET
		status=$3, amount_paid=$4, payment_status=$5, notes=$6, updated_at=$7
	WHERE id=$1 AND status=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, id, expected,
		current.Status, current.AmountPaid, current.PaymentStatus, current.Notes, current.UpdatedAt)
	if isExclusionViolation(err) {
		return nil, &domain.RoomUnavailableError{Number: current.RoomNumber, Range: current.Stay()}
	}
	if err != nil {
		return nil, wrapQuery("update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrStatusChanged
	}
	return current, nil
}
