package domain

import "testing"

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{1.004, 1.00},
		{-1.005, -1.01},
		{143.74999999999997, 143.75},
		{2240.0000000000005, 2240},
		{0.1 + 0.2, 0.30},
		{12, 12},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	b := Booking{TotalAmount: 100, AmountPaid: 120}
	if b.Balance() != 0 {
		t.Fatalf("expected 0, got %v", b.Balance())
	}
	b.AmountPaid = 60.5
	if b.Balance() != 39.5 {
		t.Fatalf("expected 39.5, got %v", b.Balance())
	}
}
