package domain

import (
	"errors"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange(day("2025-03-01"), day("2025-03-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Nights() != 3 {
		t.Fatalf("expected 3 nights, got %d", r.Nights())
	}

	for _, tc := range []struct{ start, end string }{
		{"2025-03-04", "2025-03-04"},
		{"2025-03-05", "2025-03-04"},
	} {
		_, err := NewDateRange(day(tc.start), day(tc.end))
		if !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("%s..%s: expected ErrInvalidDateRange, got %v", tc.start, tc.end, err)
		}
	}
}

func TestNightsAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	start := time.Date(2025, 3, 8, 15, 0, 0, 0, loc)
	end := time.Date(2025, 3, 10, 11, 0, 0, 0, loc)
	r, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Nights() != 2 {
		t.Fatalf("expected 2 nights across DST change, got %d", r.Nights())
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base := DateRange{Start: day("2025-05-10"), End: day("2025-05-15")}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"back to back after", DateRange{day("2025-05-15"), day("2025-05-18")}, false},
		{"back to back before", DateRange{day("2025-05-07"), day("2025-05-10")}, false},
		{"inside", DateRange{day("2025-05-11"), day("2025-05-12")}, true},
		{"covering", DateRange{day("2025-05-01"), day("2025-05-30")}, true},
		{"tail overlap", DateRange{day("2025-05-14"), day("2025-05-16")}, true},
		{"disjoint", DateRange{day("2025-06-01"), day("2025-06-02")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Fatalf("Overlaps not symmetric")
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(day("2024-02-17"))
	if !w.Start.Equal(day("2024-02-01")) || !w.End.Equal(day("2024-03-01")) {
		t.Fatalf("unexpected window %s", w)
	}
	if w.Nights() != 29 {
		t.Fatalf("expected leap February")
	}
}

func TestPaymentStatusFor(t *testing.T) {
	if PaymentStatusFor(100, 0) != PaymentUnpaid {
		t.Error("expected unpaid")
	}
	if PaymentStatusFor(100, 40) != PaymentPartial {
		t.Error("expected partial")
	}
	if PaymentStatusFor(100, 100) != PaymentPaid {
		t.Error("expected paid")
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = &StateTransitionError{BookingID: 3, Operation: "check in", Expected: []BookingStatus{BookingConfirmed}, Actual: BookingPending}
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatal("expected ErrInvalidStateTransition")
	}
	if err.Error() != "cannot check in booking 3: status is pending, expected confirmed" {
		t.Fatalf("unexpected message: %s", err)
	}
	if !IsRecoverable(err) {
		t.Fatal("state errors are recoverable")
	}
	if IsRecoverable(errors.New("connection refused")) {
		t.Fatal("store faults are not recoverable")
	}
}
