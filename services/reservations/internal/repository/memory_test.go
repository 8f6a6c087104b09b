package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

func d(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func newStore() *MemoryStore {
	return NewMemoryStore([]domain.Room{
		{Number: "101", Name: "Garden", DailyRate: 90, MaxOccupancy: 2, Amenities: []string{"wifi"}},
		{Number: "102", Name: "Chapel", DailyRate: 110, MaxOccupancy: 3},
	})
}

func TestMemoryRoomsKeepCatalogOrder(t *testing.T) {
	s := newStore()
	rooms, err := s.Rooms().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Number != "101" || rooms[1].Number != "102" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if rooms[0].Status != domain.RoomVacant {
		t.Fatalf("expected default vacant status, got %s", rooms[0].Status)
	}

	rooms[0].Amenities[0] = "mutated"
	again, _ := s.Rooms().Get(context.Background(), "101")
	if again.Amenities[0] != "wifi" {
		t.Fatal("returned rooms must not alias store state")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	s := newStore()
	if _, err := s.Rooms().Get(context.Background(), "999"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := s.Bookings().Get(context.Background(), 42); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestMemoryGuardedUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	id, err := s.Bookings().Append(ctx, &domain.Booking{RoomNumber: "101", Status: domain.BookingConfirmed, CheckIn: d("2025-05-01"), CheckOut: d("2025-05-03")})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Bookings().Update(ctx, id, domain.BookingPatch{
				IfStatus: domain.Ptr(domain.BookingConfirmed),
				Status:   domain.Ptr(domain.BookingCheckedIn),
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrStatusChanged) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMemoryAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(tx Store) error {
		if _, err := tx.Bookings().Append(ctx, &domain.Booking{RoomNumber: "101", CheckIn: d("2025-05-01"), CheckOut: d("2025-05-02")}); err != nil {
			return err
		}
		if _, err := tx.Rooms().Update(ctx, "101", domain.RoomPatch{Status: domain.Ptr(domain.RoomOccupied)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	bookings, _ := s.Bookings().List(ctx)
	if len(bookings) != 0 {
		t.Fatalf("expected rollback of appended booking, got %d", len(bookings))
	}
	room, _ := s.Rooms().Get(ctx, "101")
	if room.Status != domain.RoomVacant {
		t.Fatalf("expected room status rolled back, got %s", room.Status)
	}

	next, _ := s.Bookings().Append(ctx, &domain.Booking{RoomNumber: "101", CheckIn: d("2025-05-01"), CheckOut: d("2025-05-02")})
	if next != 1 {
		t.Fatalf("expected id sequence rolled back to 1, got %d", next)
	}
}

func TestMemoryIdempotencyKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	keys := s.Idempotency()
	if id, _ := keys.Lookup(ctx, "abc"); id != 0 {
		t.Fatalf("expected miss, got %d", id)
	}
	_ = keys.Remember(ctx, "abc", 7)
	_ = keys.Remember(ctx, "abc", 8)
	if id, _ := keys.Lookup(ctx, "abc"); id != 7 {
		t.Fatalf("expected first booking to stick, got %d", id)
	}

	now = now.Add(25 * time.Hour)
	if id, _ := keys.Lookup(ctx, "abc"); id != 0 {
		t.Fatalf("expected expired key to miss, got %d", id)
	}
	if n, _ := keys.Purge(ctx); n != 1 {
		t.Fatalf("expected one purged key, got %d", n)
	}
}
