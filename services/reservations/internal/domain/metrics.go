package domain

import "time"

type Metrics struct {
	AsOf        time.Time `json:"as_of"`
	Month       DateRange `json:"month"`
	DaysInMonth int       `json:"days_in_month"`
	RoomCount   int       `json:"room_count"`

	TotalBookings  int     `json:"total_bookings"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	YTDRevenue     float64 `json:"ytd_revenue"`
	OccupiedNights int     `json:"occupied_nights"`
	OccupancyRate  int     `json:"occupancy_rate"`
	RevPAR         float64 `json:"revpar"`

	RealizedBookings int     `json:"realized_bookings"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalNights      int     `json:"total_nights"`
	AvgDailyRate     float64 `json:"avg_daily_rate"`
	AvgBookingValue  float64 `json:"avg_booking_value"`
	AvgStayLength    float64 `json:"avg_stay_length"`

	WeekendPercent int    `json:"weekend_percent"`
	WeekdayPercent int    `json:"weekday_percent"`
	TopPurpose     string `json:"top_purpose"`

	Rooms []RoomPerformance `json:"rooms"`
}

type RoomPerformance struct {
	Number    string  `json:"number"`
	Name      string  `json:"name"`
	Bookings  int     `json:"bookings"`
	Revenue   float64 `json:"revenue"`
	Nights    int     `json:"nights"`
	Occupancy int     `json:"occupancy"`
}

// Departure is a checked-in booking due out on a given day.
type Departure struct {
	Booking Booking `json:"booking"`
	Balance float64 `json:"balance"`
}

type DailyActivity struct {
	Day        time.Time   `json:"day"`
	Arrivals   []Booking   `json:"arrivals"`
	Departures []Departure `json:"departures"`
}
