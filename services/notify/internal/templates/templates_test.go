package templates

import (
	"strings"
	"testing"

	"github.com/diagnosis/guestroom-reservations/pkg/events"
)

var stay = events.GuestStay{
	BookingID: 3, GuestName: "Ada <Lovelace>", RoomNumber: "101", RoomName: "Garden Room",
	CheckIn: "2025-09-10", CheckOut: "2025-09-12", Nights: 2,
	TotalAmount: 170, AmountPaid: 100, Balance: 70,
	PropertyName: "Parsonage Living Community", Currency: "USD",
}

func TestRenderAllTemplates(t *testing.T) {
	for _, name := range []string{
		events.TemplateGuestWelcome,
		events.TemplateCheckInReminder,
		events.TemplateCheckoutConfirmation,
	} {
		t.Run(name, func(t *testing.T) {
			e, err := Render(name, stay)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(e.Subject, "Parsonage Living Community") {
				t.Errorf("subject %q lacks property name", e.Subject)
			}
			if !strings.Contains(e.Text, "Room 101") && !strings.Contains(e.Text, "Room: 101") {
				t.Errorf("text lacks room: %s", e.Text)
			}
			if !strings.Contains(e.Text, "$70.00") {
				t.Errorf("text lacks balance: %s", e.Text)
			}
			if strings.Contains(e.HTML, "<Lovelace>") {
				t.Errorf("html must escape guest name: %s", e.HTML)
			}
		})
	}
}

func TestRenderOmitsZeroBalance(t *testing.T) {
	paid := stay
	paid.AmountPaid, paid.Balance = 170, 0

	e, err := Render(events.TemplateCheckoutConfirmation, paid)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(e.Text, "Outstanding") {
		t.Fatalf("settled stay should not show an outstanding line: %s", e.Text)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := Render("birthday", stay); err == nil {
		t.Fatal("expected error")
	}
}
