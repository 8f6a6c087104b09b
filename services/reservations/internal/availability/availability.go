// Package availability decides which rooms are free for a stay.
package availability

import "github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"

// FindAvailableRooms returns, in catalog order, every bookable room with no
// room-holding booking overlapping stay.
func FindAvailableRooms(stay domain.DateRange, rooms []domain.Room, bookings []domain.Booking) ([]domain.Room, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}

	held := make(map[string][]domain.DateRange)
	for _, b := range bookings {
		if b.Status.HoldsRoom() {
			held[b.RoomNumber] = append(held[b.RoomNumber], b.Stay())
		}
	}

	available := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.Bookable() {
			continue
		}
		if overlapsAny(stay, held[room.Number]) {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}

// Conflict returns the first room-holding booking on roomNumber that overlaps
// stay, ignoring the booking with id exclude. It returns nil when the room is free.
func Conflict(stay domain.DateRange, roomNumber string, bookings []domain.Booking, exclude int64) *domain.Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.ID == exclude || b.RoomNumber != roomNumber || !b.Status.HoldsRoom() {
			continue
		}
		if stay.Overlaps(b.Stay()) {
			return b
		}
	}
	return nil
}

func overlapsAny(stay domain.DateRange, ranges []domain.DateRange) bool {
	for _, r := range ranges {
		if stay.Overlaps(r) {
			return true
		}
	}
	return false
}
