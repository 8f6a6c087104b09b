package domain

import "time"

type RoomStatus string

const (
	RoomVacant      RoomStatus = "vacant"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomPending     RoomStatus = "pending"
)

func ParseRoomStatus(s string) (RoomStatus, bool) {
	switch RoomStatus(s) {
	case RoomVacant, RoomOccupied, RoomMaintenance, RoomPending:
		return RoomStatus(s), true
	default:
		return "", false
	}
}

type Room struct {
	Number           string     `json:"number"`
	Name             string     `json:"name"`
	RoomType         string     `json:"room_type"`
	DailyRate        float64    `json:"daily_rate"`
	WeeklyRate       *float64   `json:"weekly_rate,omitempty"`
	MonthlyRate      *float64   `json:"monthly_rate,omitempty"`
	MaxOccupancy     int        `json:"max_occupancy"`
	Amenities        []string   `json:"amenities"`
	Status           RoomStatus `json:"status"`
	Occupant         *Occupant  `json:"occupant,omitempty"`
	LastCleaned      *time.Time `json:"last_cleaned,omitempty"`
	MaintenanceNotes string     `json:"maintenance_notes,omitempty"`
}

// Occupant mirrors the checked-in booking while a room is occupied. It is a
// back-reference only; the booking remains the source of truth.
type Occupant struct {
	BookingID int64     `json:"booking_id"`
	GuestName string    `json:"guest_name"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
}

// RoomPatch lists the room fields a lifecycle step or maintenance tool may change.
// Nil fields are left untouched; ClearOccupant wipes the occupant mirror.
type RoomPatch struct {
	Status           *RoomStatus
	Occupant         *Occupant
	ClearOccupant    bool
	LastCleaned      *time.Time
	MaintenanceNotes *string
}

// Apply writes the patch onto r.
func (p RoomPatch) Apply(r *Room) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ClearOccupant {
		r.Occupant = nil
	}
	if p.Occupant != nil {
		o := *p.Occupant
		r.Occupant = &o
	}
	if p.LastCleaned != nil {
		t := *p.LastCleaned
		r.LastCleaned = &t
	}
	if p.MaintenanceNotes != nil {
		r.MaintenanceNotes = *p.MaintenanceNotes
	}
}

// Bookable reports whether the room may be offered for new stays.
func (r *Room) Bookable() bool {
	return r.Status != RoomMaintenance
}
