package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/events"
)

func TestBuild(t *testing.T) {
	data, name, err := Build(events.GuestStay{
		BookingID: 12, GuestName: "Ada Lovelace", RoomNumber: "201", RoomName: "Loft Suite",
		CheckIn: "2025-09-10", CheckOut: "2025-09-13", Nights: 3,
		TotalAmount: 360, AmountPaid: 360, PropertyName: "Parsonage Living Community", Currency: "USD",
	}, time.Date(2025, 9, 13, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if name != "receipt-12.pdf" {
		t.Fatalf("filename = %q", name)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		v        float64
		currency string
		want     string
	}{
		{1234.5, "USD", "$1234.50"},
		{0, "", "$0.00"},
		{99.999, "EUR", "100.00 EUR"},
	}
	for _, tt := range tests {
		if got := Money(tt.v, tt.currency); got != tt.want {
			t.Errorf("Money(%v, %q) = %q, want %q", tt.v, tt.currency, got, tt.want)
		}
	}
}
