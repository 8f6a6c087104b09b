// Package receipt renders the PDF receipt attached to checkout confirmations.
package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/diagnosis/guestroom-reservations/pkg/events"
)

// Build renders the receipt for a completed stay and returns the PDF bytes and
// a filename for the attachment.
func Build(stay events.GuestStay, issued time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, safe(stay.PropertyName, "Guest Rooms"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Guest room receipt")
	pdf.Ln(12)

	pdf.Cell(0, 7, fmt.Sprintf("Receipt no : R-%d", stay.BookingID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+issued.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Guest")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, safe(stay.GuestName, "-"))
	pdf.Ln(10)

	room := "Room " + stay.RoomNumber
	if stay.RoomName != "" {
		room += " (" + stay.RoomName + ")"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Stay")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("%s, %s to %s, %d %s",
		room, stay.CheckIn, stay.CheckOut, stay.Nights, plural(stay.Nights, "night", "nights")), "", "", false)
	pdf.Ln(4)

	line := func(label string, amount float64) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, Money(amount, stay.Currency), "", 1, "R", false, 0, "")
	}
	line("Total charges", stay.TotalAmount)
	line("Amount paid", stay.AmountPaid)
	pdf.SetFont("Helvetica", "B", 12)
	line("Balance due", stay.Balance)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Thank you for staying with us.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("receipt-%d.pdf", stay.BookingID), nil
}

// Money formats an amount with two decimals and the currency code.
func Money(v float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
