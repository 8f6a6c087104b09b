package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

func d(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func realized(id int64, room, in, out string, paid float64, purpose string) domain.Booking {
	b := domain.Booking{
		ID: id, RoomNumber: room, CheckIn: d(in), CheckOut: d(out),
		AmountPaid: paid, Status: domain.BookingCheckedOut, Purpose: purpose,
	}
	b.Nights = b.Stay().Nights()
	return b
}

var rooms = []domain.Room{
	{Number: "1", Name: "Garden"},
	{Number: "2", Name: "Loft"},
}

func TestComputeMetrics(t *testing.T) {
	bookings := []domain.Booking{
		// September 2025: Fri 5th arrival, 3 nights, room 1.
		realized(1, "1", "2025-09-05", "2025-09-08", 330, "Family"),
		// Mon 15th arrival, 2 nights, room 2, still in house.
		func() domain.Booking {
			b := realized(2, "2", "2025-09-15", "2025-09-17", 240, "Business")
			b.Status = domain.BookingCheckedIn
			return b
		}(),
		// Earlier in the year, counts toward YTD and averages only.
		realized(3, "1", "2025-03-03", "2025-03-08", 500, "Family"),
		// Previous year: averages only.
		realized(4, "2", "2024-12-27", "2024-12-29", 200, ""),
		// Not realized: ignored everywhere.
		{ID: 5, RoomNumber: "1", CheckIn: d("2025-09-20"), CheckOut: d("2025-09-22"), Nights: 2, AmountPaid: 999, Status: domain.BookingConfirmed},
		{ID: 6, RoomNumber: "2", CheckIn: d("2025-09-20"), CheckOut: d("2025-09-22"), Nights: 2, AmountPaid: 999, Status: domain.BookingCancelled},
	}

	m := ComputeMetrics(bookings, rooms, d("2025-09-18"))

	if m.DaysInMonth != 30 || m.RoomCount != 2 {
		t.Fatalf("unexpected window: days=%d rooms=%d", m.DaysInMonth, m.RoomCount)
	}
	if m.TotalBookings != 2 || m.MonthlyRevenue != 570 {
		t.Errorf("month: bookings=%d revenue=%v", m.TotalBookings, m.MonthlyRevenue)
	}
	if m.YTDRevenue != 1070 {
		t.Errorf("ytd revenue = %v, want 1070", m.YTDRevenue)
	}
	if m.OccupiedNights != 5 {
		t.Errorf("occupied nights = %d, want 5", m.OccupiedNights)
	}
	// 5 / (2*30) = 8.33%
	if m.OccupancyRate != 8 {
		t.Errorf("occupancy rate = %d, want 8", m.OccupancyRate)
	}
	if m.RevPAR != 285 {
		t.Errorf("revPAR = %v, want 285", m.RevPAR)
	}

	// All realized: revenue 1270 over 12 nights and 4 bookings.
	if m.RealizedBookings != 4 || m.TotalRevenue != 1270 || m.TotalNights != 12 {
		t.Errorf("totals: %d bookings, %v revenue, %d nights", m.RealizedBookings, m.TotalRevenue, m.TotalNights)
	}
	if m.AvgDailyRate != 105.83 {
		t.Errorf("avg daily rate = %v, want 105.83", m.AvgDailyRate)
	}
	if m.AvgBookingValue != 317.5 || m.AvgStayLength != 3 {
		t.Errorf("avg booking value = %v, avg stay = %v", m.AvgBookingValue, m.AvgStayLength)
	}

	// Arrivals: Fri, Mon, Mon, Fri -> 2 of 4 weekend.
	if m.WeekendPercent != 50 || m.WeekdayPercent != 50 {
		t.Errorf("weekend split = %d/%d", m.WeekendPercent, m.WeekdayPercent)
	}
	if m.TopPurpose != "Family" {
		t.Errorf("top purpose = %q", m.TopPurpose)
	}

	want := []domain.RoomPerformance{
		{Number: "1", Name: "Garden", Bookings: 1, Revenue: 330, Nights: 3, Occupancy: 10},
		{Number: "2", Name: "Loft", Bookings: 1, Revenue: 240, Nights: 2, Occupancy: 7},
	}
	if !reflect.DeepEqual(m.Rooms, want) {
		t.Errorf("rooms = %+v, want %+v", m.Rooms, want)
	}
}

func TestFullyBookedRoomIsAtFullOccupancy(t *testing.T) {
	bookings := []domain.Booking{realized(1, "1", "2025-11-01", "2025-12-01", 3000, "Retreat")}
	m := ComputeMetrics(bookings, rooms[:1], d("2025-11-15"))

	if m.Rooms[0].Occupancy != 100 || m.OccupancyRate != 100 {
		t.Fatalf("expected 100%% occupancy, got room=%d overall=%d", m.Rooms[0].Occupancy, m.OccupancyRate)
	}
}

func TestTopPurposeTieGoesToFirstSeen(t *testing.T) {
	bookings := []domain.Booking{
		realized(1, "1", "2025-04-01", "2025-04-02", 100, "Wedding"),
		realized(2, "1", "2025-04-02", "2025-04-03", 100, "Business"),
		realized(3, "1", "2025-04-03", "2025-04-04", 100, "Business"),
		realized(4, "1", "2025-04-04", "2025-04-05", 100, "Wedding"),
	}
	if got := ComputeMetrics(bookings, rooms, d("2025-04-10")).TopPurpose; got != "Wedding" {
		t.Fatalf("expected first-seen purpose to win the tie, got %q", got)
	}
}

func TestEmptyHistory(t *testing.T) {
	m := ComputeMetrics(nil, nil, d("2025-02-10"))
	if m.TopPurpose != "None" || m.OccupancyRate != 0 || m.RevPAR != 0 || m.AvgDailyRate != 0 {
		t.Fatalf("unexpected metrics for empty history: %+v", m)
	}
	if m.DaysInMonth != 28 {
		t.Fatalf("expected 28 days in February 2025, got %d", m.DaysInMonth)
	}
}

func TestComputeMetricsIsIdempotent(t *testing.T) {
	bookings := []domain.Booking{
		realized(1, "1", "2025-06-06", "2025-06-09", 400, "Leisure"),
		realized(2, "2", "2025-06-10", "2025-06-12", 250, ""),
	}
	asOf := d("2025-06-20")
	a := ComputeMetrics(bookings, rooms, asOf)
	b := ComputeMetrics(bookings, rooms, asOf)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("metrics differ between identical calls:\n%+v\n%+v", a, b)
	}
}

func TestYearToDateEndsWithAsOfMonth(t *testing.T) {
	bookings := []domain.Booking{
		realized(1, "1", "2024-12-31", "2025-01-02", 1, ""),
		realized(2, "1", "2025-01-01", "2025-01-02", 10, ""),
		realized(3, "2", "2025-09-25", "2025-09-27", 100, ""),
		realized(4, "2", "2025-10-01", "2025-10-02", 1000, ""),
	}

	m := ComputeMetrics(bookings, rooms, d("2025-09-18"))
	if m.YTDRevenue != 110 {
		t.Fatalf("ytd revenue = %v, want 110 (Jan 1 through Sep 30)", m.YTDRevenue)
	}
	if m.MonthlyRevenue != 100 {
		t.Fatalf("monthly revenue = %v, want 100", m.MonthlyRevenue)
	}
	if m.TotalRevenue != 1111 {
		t.Fatalf("total revenue = %v, want 1111", m.TotalRevenue)
	}
}

func TestRoomPerformanceCoversMonthOnly(t *testing.T) {
	bookings := []domain.Booking{
		realized(1, "1", "2025-08-10", "2025-08-15", 500, ""),
		realized(2, "1", "2025-09-10", "2025-09-12", 200, ""),
	}

	m := ComputeMetrics(bookings, rooms, d("2025-09-18"))
	r := m.Rooms[0]
	if r.Bookings != 1 || r.Revenue != 200 || r.Nights != 2 {
		t.Fatalf("room 1 should only count September: %+v", r)
	}
}
