package handlers

import (
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/service"
)

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

type createBookingReq struct {
	GuestName       string  `json:"guest_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	RoomNumber      string  `json:"room_number"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	GuestCount      int     `json:"guest_count"`
	Purpose         string  `json:"purpose"`
	SpecialRequests string  `json:"special_requests"`
	Deposit         float64 `json:"deposit"`
	Source          string  `json:"source"`
	Notes           string  `json:"notes"`
	Confirmed       bool    `json:"confirmed"`
}

func (c createBookingReq) toDomain() (domain.BookingRequest, error) {
	in, err := domain.ParseDay(c.CheckIn)
	if err != nil {
		return domain.BookingRequest{}, &domain.ValidationError{Field: "check_in", Message: "must be a YYYY-MM-DD date"}
	}
	out, err := domain.ParseDay(c.CheckOut)
	if err != nil {
		return domain.BookingRequest{}, &domain.ValidationError{Field: "check_out", Message: "must be a YYYY-MM-DD date"}
	}
	return domain.BookingRequest{
		GuestName:       c.GuestName,
		Email:           c.Email,
		Phone:           c.Phone,
		RoomNumber:      c.RoomNumber,
		CheckIn:         in,
		CheckOut:        out,
		GuestCount:      c.GuestCount,
		Purpose:         c.Purpose,
		SpecialRequests: c.SpecialRequests,
		Deposit:         c.Deposit,
		Source:          c.Source,
		Notes:           c.Notes,
		Confirmed:       c.Confirmed,
	}, nil
}

type bookingDTO struct {
	ID              int64   `json:"id"`
	GuestName       string  `json:"guest_name"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	RoomNumber      string  `json:"room_number"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	Nights          int     `json:"nights"`
	GuestCount      int     `json:"guest_count"`
	Purpose         string  `json:"purpose,omitempty"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	TotalAmount     float64 `json:"total_amount"`
	AmountPaid      float64 `json:"amount_paid"`
	Balance         float64 `json:"balance"`
	PaymentStatus   string  `json:"payment_status"`
	Status          string  `json:"status"`
	Source          string  `json:"source,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func toBookingDTO(b domain.Booking) bookingDTO {
	dto := bookingDTO{
		ID:              b.ID,
		GuestName:       b.GuestName,
		Email:           b.Email,
		Phone:           b.Phone,
		RoomNumber:      b.RoomNumber,
		CheckIn:         date(b.CheckIn),
		CheckOut:        date(b.CheckOut),
		Nights:          b.Nights,
		GuestCount:      b.GuestCount,
		Purpose:         b.Purpose,
		SpecialRequests: b.SpecialRequests,
		TotalAmount:     b.TotalAmount,
		AmountPaid:      b.AmountPaid,
		Balance:         b.Balance(),
		PaymentStatus:   string(b.PaymentStatus),
		Status:          string(b.Status),
		Source:          b.Source,
		Notes:           b.Notes,
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type occupantDTO struct {
	BookingID int64  `json:"booking_id"`
	GuestName string `json:"guest_name"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type roomDTO struct {
	Number           string       `json:"number"`
	Name             string       `json:"name"`
	RoomType         string       `json:"room_type,omitempty"`
	DailyRate        float64      `json:"daily_rate"`
	WeeklyRate       *float64     `json:"weekly_rate,omitempty"`
	MonthlyRate      *float64     `json:"monthly_rate,omitempty"`
	MaxOccupancy     int          `json:"max_occupancy"`
	Amenities        []string     `json:"amenities"`
	Status           string       `json:"status"`
	Occupant         *occupantDTO `json:"occupant,omitempty"`
	LastCleaned      string       `json:"last_cleaned,omitempty"`
	MaintenanceNotes string       `json:"maintenance_notes,omitempty"`
}

func toRoomDTO(r domain.Room) roomDTO {
	dto := roomDTO{
		Number:           r.Number,
		Name:             r.Name,
		RoomType:         r.RoomType,
		DailyRate:        r.DailyRate,
		WeeklyRate:       r.WeeklyRate,
		MonthlyRate:      r.MonthlyRate,
		MaxOccupancy:     r.MaxOccupancy,
		Amenities:        r.Amenities,
		Status:           string(r.Status),
		MaintenanceNotes: r.MaintenanceNotes,
	}
	if dto.Amenities == nil {
		dto.Amenities = []string{}
	}
	if r.Occupant != nil {
		dto.Occupant = &occupantDTO{
			BookingID: r.Occupant.BookingID,
			GuestName: r.Occupant.GuestName,
			CheckIn:   date(r.Occupant.CheckIn),
			CheckOut:  date(r.Occupant.CheckOut),
		}
	}
	if r.LastCleaned != nil {
		dto.LastCleaned = r.LastCleaned.UTC().Format(time.RFC3339)
	}
	return dto
}

type quoteDTO struct {
	Room     roomDTO `json:"room"`
	CheckIn  string  `json:"check_in"`
	CheckOut string  `json:"check_out"`
	Nights   int     `json:"nights"`
	Total    float64 `json:"total"`
}

func toQuoteDTO(q service.RoomQuote, stay domain.DateRange) quoteDTO {
	return quoteDTO{
		Room:     toRoomDTO(q.Room),
		CheckIn:  date(stay.Start),
		CheckOut: date(stay.End),
		Nights:   q.Nights,
		Total:    q.Total,
	}
}

type monthDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// metricsDTO renders the dashboard with calendar dates in place of timestamps.
type metricsDTO struct {
	domain.Metrics
	AsOf  string   `json:"as_of"`
	Month monthDTO `json:"month"`
}

func toMetricsDTO(m domain.Metrics) metricsDTO {
	if m.Rooms == nil {
		m.Rooms = []domain.RoomPerformance{}
	}
	return metricsDTO{
		Metrics: m,
		AsOf:    date(m.AsOf),
		Month:   monthDTO{Start: date(m.Month.Start), End: date(m.Month.End)},
	}
}

type departureDTO struct {
	Booking bookingDTO `json:"booking"`
	Balance float64    `json:"balance"`
}

type activityDTO struct {
	Date       string         `json:"date"`
	Arrivals   []bookingDTO   `json:"arrivals"`
	Departures []departureDTO `json:"departures"`
}

func toActivityDTO(a domain.DailyActivity) activityDTO {
	dto := activityDTO{
		Date:       date(a.Day),
		Arrivals:   make([]bookingDTO, 0, len(a.Arrivals)),
		Departures: make([]departureDTO, 0, len(a.Departures)),
	}
	for _, b := range a.Arrivals {
		dto.Arrivals = append(dto.Arrivals, toBookingDTO(b))
	}
	for _, d := range a.Departures {
		dto.Departures = append(dto.Departures, departureDTO{Booking: toBookingDTO(d.Booking), Balance: d.Balance})
	}
	return dto
}
