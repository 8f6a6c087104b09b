// Package analytics folds booking history into occupancy and revenue metrics.
package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

const (
	noPurpose    = "None"
	otherPurpose = "Other"
)

func isWeekend(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday
}

// ComputeMetrics is a pure fold over realized bookings. Month figures use the
// calendar month containing asOf; year-to-date runs from January 1 to the end of
// that month. Averages, the weekend split and the top purpose cover every
// realized booking.
func ComputeMetrics(bookings []domain.Booking, rooms []domain.Room, asOf time.Time) domain.Metrics {
	month := domain.MonthWindow(asOf)
	ytd := domain.DateRange{
		Start: time.Date(month.Start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   month.End,
	}

	m := domain.Metrics{
		AsOf:        domain.Day(asOf),
		Month:       month,
		DaysInMonth: month.Nights(),
		RoomCount:   len(rooms),
		TopPurpose:  noPurpose,
		Rooms:       make([]domain.RoomPerformance, len(rooms)),
	}

	roomIdx := make(map[string]int, len(rooms))
	for i, r := range rooms {
		roomIdx[r.Number] = i
		m.Rooms[i] = domain.RoomPerformance{Number: r.Number, Name: r.Name}
	}

	var (
		weekend      int
		purposeCount = make(map[string]int)
		purposeOrder []string
	)

	for _, b := range bookings {
		if !b.Status.Realized() {
			continue
		}
		nights := b.Nights
		if nights == 0 {
			nights = b.Stay().Nights()
		}
		arrival := domain.Day(b.CheckIn)

		m.RealizedBookings++
		m.TotalRevenue += b.AmountPaid
		m.TotalNights += nights

		if isWeekend(arrival.Weekday()) {
			weekend++
		}

		purpose := strings.TrimSpace(b.Purpose)
		if purpose == "" {
			purpose = otherPurpose
		}
		if purposeCount[purpose] == 0 {
			purposeOrder = append(purposeOrder, purpose)
		}
		purposeCount[purpose]++

		if ytd.Contains(arrival) {
			m.YTDRevenue += b.AmountPaid
		}
		if !month.Contains(arrival) {
			continue
		}
		m.TotalBookings++
		m.MonthlyRevenue += b.AmountPaid
		m.OccupiedNights += nights

		if i, ok := roomIdx[b.RoomNumber]; ok {
			rp := &m.Rooms[i]
			rp.Bookings++
			rp.Revenue += b.AmountPaid
			rp.Nights += nights
		}
	}

	for i := range m.Rooms {
		rp := &m.Rooms[i]
		rp.Revenue = domain.RoundCents(rp.Revenue)
		rp.Occupancy = percent(float64(rp.Nights), float64(m.DaysInMonth))
	}

	if m.RoomCount > 0 {
		m.OccupancyRate = percent(float64(m.OccupiedNights), float64(m.RoomCount*m.DaysInMonth))
		m.RevPAR = domain.RoundCents(m.MonthlyRevenue / float64(m.RoomCount))
	}
	if m.TotalNights > 0 {
		m.AvgDailyRate = domain.RoundCents(m.TotalRevenue / float64(m.TotalNights))
	}
	if m.RealizedBookings > 0 {
		n := float64(m.RealizedBookings)
		m.AvgBookingValue = domain.RoundCents(m.TotalRevenue / n)
		m.AvgStayLength = domain.RoundCents(float64(m.TotalNights) / n)
		m.WeekendPercent = percent(float64(weekend), n)
		m.WeekdayPercent = 100 - m.WeekendPercent
	}

	best := 0
	for _, p := range purposeOrder {
		if purposeCount[p] > best {
			best = purposeCount[p]
			m.TopPurpose = p
		}
	}

	m.TotalRevenue = domain.RoundCents(m.TotalRevenue)
	m.MonthlyRevenue = domain.RoundCents(m.MonthlyRevenue)
	m.YTDRevenue = domain.RoundCents(m.YTDRevenue)
	return m
}

func percent(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
