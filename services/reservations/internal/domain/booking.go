package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// HoldsRoom reports whether a booking in this status blocks its room's dates.
func (s BookingStatus) HoldsRoom() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

// Realized reports whether the stay actually happened.
func (s BookingStatus) Realized() bool {
	return s == BookingCheckedIn || s == BookingCheckedOut
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentStatusFor derives the payment status from amounts.
func PaymentStatusFor(total, paid float64) PaymentStatus {
	switch {
	case paid >= total:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

type Booking struct {
	ID              int64         `json:"id"`
	GuestName       string        `json:"guest_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	RoomNumber      string        `json:"room_number"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	Nights          int           `json:"nights"`
	GuestCount      int           `json:"guest_count"`
	Purpose         string        `json:"purpose"`
	SpecialRequests string        `json:"special_requests"`
	TotalAmount     float64       `json:"total_amount"`
	AmountPaid      float64       `json:"amount_paid"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Status          BookingStatus `json:"status"`
	Source          string        `json:"source"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b *Booking) Stay() DateRange {
	return DateRange{Start: Day(b.CheckIn), End: Day(b.CheckOut)}
}

// Balance is the amount still owed, never negative.
func (b *Booking) Balance() float64 {
	return math.Max(0, RoundCents(b.TotalAmount-b.AmountPaid))
}

// BookingPatch lists the fields a lifecycle transition may change. IfStatus
// guards the write: stores reject the patch with ErrStatusChanged when the
// booking is no longer in that status.
type BookingPatch struct {
	IfStatus      *BookingStatus
	Status        *BookingStatus
	AmountPaid    *float64
	PaymentStatus *PaymentStatus
	Notes         *string
}

func (p BookingPatch) Apply(b *Booking, now time.Time) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.AmountPaid != nil {
		b.AmountPaid = *p.AmountPaid
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	b.UpdatedAt = now
}

// BookingRequest is what intake hands over to create a booking.
type BookingRequest struct {
	GuestName       string    `json:"guest_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	RoomNumber      string    `json:"room_number"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	GuestCount      int       `json:"guest_count"`
	Purpose         string    `json:"purpose"`
	SpecialRequests string    `json:"special_requests"`
	Deposit         float64   `json:"deposit"`
	Source          string    `json:"source"`
	Notes           string    `json:"notes"`
	Confirmed       bool      `json:"confirmed"`
}

// RoundCents rounds half away from zero to two decimals. It rounds the
// shortest decimal form of v, so 1.005 becomes 1.01 even though its binary
// value sits just below the half.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e15 {
		return math.Round(v*100) / 100
	}

	whole, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	frac += "000"
	cents, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	if frac[2] >= '5' {
		cents++
	}

	r := float64(cents) / 100
	if v < 0 {
		return -r
	}
	return r
}

func Ptr[T any](v T) *T { return &v }
