package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

func d(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func stay(a, b string) domain.DateRange {
	return domain.DateRange{Start: d(a), End: d(b)}
}

func booking(id int64, room string, status domain.BookingStatus, in, out string) domain.Booking {
	return domain.Booking{ID: id, RoomNumber: room, Status: status, CheckIn: d(in), CheckOut: d(out)}
}

func TestFindAvailableRooms(t *testing.T) {
	rooms := []domain.Room{
		{Number: "1", Status: domain.RoomVacant},
		{Number: "2", Status: domain.RoomOccupied},
		{Number: "3", Status: domain.RoomMaintenance},
		{Number: "4", Status: domain.RoomVacant},
	}
	bookings := []domain.Booking{
		booking(1, "1", domain.BookingConfirmed, "2025-04-10", "2025-04-14"),
		booking(2, "2", domain.BookingCheckedIn, "2025-04-01", "2025-04-11"),
		booking(3, "4", domain.BookingPending, "2025-04-10", "2025-04-14"),
		booking(4, "4", domain.BookingCancelled, "2025-04-10", "2025-04-14"),
		booking(5, "4", domain.BookingCheckedOut, "2025-04-10", "2025-04-14"),
	}

	tests := []struct {
		name string
		in   domain.DateRange
		want []string
	}{
		{"overlapping", stay("2025-04-12", "2025-04-13"), []string{"2", "4"}},
		{"overlapping both", stay("2025-04-09", "2025-04-13"), []string{"4"}},
		{"back to back with confirmed", stay("2025-04-14", "2025-04-16"), []string{"1", "2", "4"}},
		{"ends on arrival day", stay("2025-04-08", "2025-04-10"), []string{"1", "4"}},
		{"later month", stay("2025-05-01", "2025-05-03"), []string{"1", "2", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindAvailableRooms(tt.in, rooms, bookings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected rooms %v, got %d rooms", tt.want, len(got))
			}
			for i, r := range got {
				if r.Number != tt.want[i] {
					t.Fatalf("position %d: expected room %s, got %s", i, tt.want[i], r.Number)
				}
			}
		})
	}
}

func TestFindAvailableRoomsInsideConfirmedStayOnOnlyRoom(t *testing.T) {
	rooms := []domain.Room{{Number: "1", Status: domain.RoomVacant}}
	bookings := []domain.Booking{booking(1, "1", domain.BookingConfirmed, "2025-07-01", "2025-07-20")}

	got, err := FindAvailableRooms(stay("2025-07-05", "2025-07-06"), rooms, bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rooms, got %d", len(got))
	}
}

func TestFindAvailableRoomsRejectsInvertedRange(t *testing.T) {
	_, err := FindAvailableRooms(stay("2025-07-06", "2025-07-05"), nil, nil)
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestConflict(t *testing.T) {
	bookings := []domain.Booking{
		booking(1, "1", domain.BookingConfirmed, "2025-04-10", "2025-04-14"),
		booking(2, "1", domain.BookingPending, "2025-04-20", "2025-04-22"),
	}
	if c := Conflict(stay("2025-04-13", "2025-04-15"), "1", bookings, 0); c == nil || c.ID != 1 {
		t.Fatalf("expected conflict with booking 1, got %+v", c)
	}
	if c := Conflict(stay("2025-04-13", "2025-04-15"), "1", bookings, 1); c != nil {
		t.Fatalf("excluded booking must not conflict with itself")
	}
	if c := Conflict(stay("2025-04-20", "2025-04-21"), "1", bookings, 0); c != nil {
		t.Fatalf("pending bookings do not hold the room")
	}
}
