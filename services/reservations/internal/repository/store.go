package repository

import (
	"context"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

type RoomStore interface {
	List(ctx context.Context) ([]domain.Room, error)
	Get(ctx context.Context, number string) (*domain.Room, error)
	Update(ctx context.Context, number string, patch domain.RoomPatch) (*domain.Room, error)
}

type BookingStore interface {
	List(ctx context.Context) ([]domain.Booking, error)
	ListByRoom(ctx context.Context, roomNumber string) ([]domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	Append(ctx context.Context, b *domain.Booking) (int64, error)
	Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
}

// IdempotencyStore maps client idempotency keys to the booking they created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (bookingID int64, err error)
	Remember(ctx context.Context, key string, bookingID int64) error
	// Purge drops expired keys and reports how many were removed.
	Purge(ctx context.Context) (int64, error)
}

// Store groups the repositories and runs multi-record writes atomically.
// Inside fn, tx must be used instead of the outer store; nested Atomic calls
// join the running transaction.
type Store interface {
	Rooms() RoomStore
	Bookings() BookingStore
	Idempotency() IdempotencyStore
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
