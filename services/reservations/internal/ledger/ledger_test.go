package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

func TestCheckoutEntry(t *testing.T) {
	at := time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC)
	e := CheckoutEntry(domain.Booking{ID: 42, GuestName: "Ada Byron", RoomNumber: "7", AmountPaid: 345.678}, at)

	if e.Type != TypeGuestRoomIncome || e.Category != CategoryGuestRoom {
		t.Fatalf("unexpected classification: %+v", e)
	}
	if e.Amount != 345.68 {
		t.Errorf("expected amount rounded to cents, got %v", e.Amount)
	}
	if e.Description != "Guest room rental - Ada Byron (Room 7)" {
		t.Errorf("unexpected description %q", e.Description)
	}
	if e.Reference != "42" || e.Payer != "Ada Byron" || !e.Date.Equal(at) {
		t.Errorf("unexpected reference fields: %+v", e)
	}
}

func TestSQLLedgerRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	e := CheckoutEntry(domain.Booking{ID: 9, GuestName: "Grace", RoomNumber: "3", AmountPaid: 500}, time.Now())
	mock.ExpectExec(`INSERT INTO ledger_entries`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), TypeGuestRoomIncome, CategoryGuestRoom, 500.0, e.Description, "Grace", "9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewSQLLedger(db).Record(context.Background(), e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLLedgerRecordWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	down := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO ledger_entries`).WillReturnError(down)

	err = NewSQLLedger(db).Record(context.Background(), Entry{Reference: "1"})
	if !errors.Is(err, down) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
