package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type roomRepository struct {
	db dbtx
}

const roomCols = `number, name, room_type,
daily_rate::float8, weekly_rate::float8, monthly_rate::float8,
max_occupancy, amenities, status,
current_booking, current_guest, occupied_from, occupied_until,
last_cleaned, maintenance_notes`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var (
		r         domain.Room
		bookingID *int64
		guest     string
		from, to  *time.Time
	)
	err := row.Scan(
		&r.Number, &r.Name, &r.RoomType,
		&r.DailyRate, &r.WeeklyRate, &r.MonthlyRate,
		&r.MaxOccupancy, &r.Amenities, &r.Status,
		&bookingID, &guest, &from, &to,
		&r.LastCleaned, &r.MaintenanceNotes,
	)
	if err != nil {
		return nil, err
	}
	if bookingID != nil {
		occ := domain.Occupant{BookingID: *bookingID, GuestName: guest}
		if from != nil {
			occ.CheckIn = *from
		}
		if to != nil {
			occ.CheckOut = *to
		}
		r.Occupant = &occ
	}
	return &r, nil
}

func (r *roomRepository) List(ctx context.Context) ([]domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms ORDER BY position`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, wrapQuery("list rooms", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, wrapQuery("scan room", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Get(ctx context.Context, number string) (*domain.Room, error) {
	return r.get(ctx, number, "")
}

func (r *roomRepository) get(ctx context.Context, number, lock string) (*domain.Room, error) {
	q := `SELECT ` + roomCols + ` FROM rooms WHERE number=$1` + lock
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	room, err := scanRoom(r.db.QueryRow(ctx, q, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.RoomNotFoundError{Number: number}
	}
	if err != nil {
		return nil, wrapQuery("get room", err)
	}
	return room, nil
}

func (r *roomRepository) Update(ctx context.Context, number string, patch domain.RoomPatch) (*domain.Room, error) {
	room, err := r.get(ctx, number, " FOR UPDATE")
	if err != nil {
		return nil, err
	}
	patch.Apply(room)

	var (
		bookingID *int64
		guest     string
		from, to  *time.Time
	)
	if occ := room.Occupant; occ != nil {
		bookingID, guest = &occ.BookingID, occ.GuestName
		from, to = &occ.CheckIn, &occ.CheckOut
	}

	const q = `UPDATE rooms SET
		status=$2, current_booking=$3, current_guest=$4,
		occupied_from=$5, occupied_until=$6, last_cleaned=$7, maintenance_notes=$8
	WHERE number=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.Exec(ctx, q, number,
		room.Status, bookingID, guest, from, to, room.LastCleaned, room.MaintenanceNotes,
	); err != nil {
		return nil, wrapQuery("update room", err)
	}
	return room, nil
}

// SeedRooms inserts rooms that do not exist yet, keeping the given order.
// Existing rows are left untouched so operational state survives restarts.
func SeedRooms(ctx context.Context, pool *pgxpool.Pool, rooms []domain.Room) (int, error) {
	const q = `
		INSERT INTO rooms (number, name, room_type, daily_rate, weekly_rate, monthly_rate, max_occupancy, amenities, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (number) DO NOTHING`

	inserted := 0
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, room := range rooms {
			status := room.Status
			if status == "" {
				status = domain.RoomVacant
			}
			amenities := room.Amenities
			if amenities == nil {
				amenities = []string{}
			}
			tag, err := tx.Exec(ctx, q,
				room.Number, room.Name, room.RoomType,
				room.DailyRate, room.WeeklyRate, room.MonthlyRate,
				room.MaxOccupancy, amenities, string(status),
			)
			if err != nil {
				return wrapQuery("seed room "+room.Number, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	return inserted, err
}
