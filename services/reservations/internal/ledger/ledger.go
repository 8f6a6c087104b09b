// Package ledger records guest-room income in the property's financial ledger.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	TypeGuestRoomIncome = "Guest Room Income"
	CategoryGuestRoom   = "Guest Room"
)

type Entry struct {
	ID          uuid.UUID
	Date        time.Time
	Type        string
	Category    string
	Amount      float64
	Description string
	Payer       string
	Reference   string
}

// Ledger is the financial ledger collaborator.
type Ledger interface {
	Record(ctx context.Context, e Entry) error
}

// CheckoutEntry builds the income entry written when a guest checks out.
func CheckoutEntry(b domain.Booking, at time.Time) Entry {
	return Entry{
		ID:          uuid.New(),
		Date:        at,
		Type:        TypeGuestRoomIncome,
		Category:    CategoryGuestRoom,
		Amount:      domain.RoundCents(b.AmountPaid),
		Description: fmt.Sprintf("Guest room rental - %s (Room %s)", b.GuestName, b.RoomNumber),
		Payer:       b.GuestName,
		Reference:   strconv.FormatInt(b.ID, 10),
	}
}

type SQLLedger struct {
	db *sql.DB
}

func NewSQLLedger(db *sql.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

// Open connects to the ledger database through the pgx database/sql driver.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func (l *SQLLedger) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, entry_date, entry_type, category, amount, description, payer, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Date, e.Type, e.Category, e.Amount, e.Description, e.Payer, e.Reference)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry %s: %w", e.Reference, err)
	}
	return nil
}

// LogLedger writes entries to the service log. It backs the in-memory driver
// where no ledger database exists.
type LogLedger struct{}

func (LogLedger) Record(ctx context.Context, e Entry) error {
	logger.InfoContext(ctx, "Ledger entry",
		"entry_id", e.ID.String(),
		"type", e.Type,
		"amount", e.Amount,
		"payer", e.Payer,
		"reference", e.Reference,
	)
	return nil
}
