package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Subject, err)
	}
	return nil
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("guestroom-reservations"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

// Ping reports whether the connection to the broker is up.
func (n *NATSEventBus) Ping(ctx context.Context) error {
	if !n.conn.IsConnected() {
		return fmt.Errorf("nats connection is %s", n.conn.Status())
	}
	return n.conn.FlushWithContext(ctx)
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func wrap(msg *nats.Msg) *Message {
	now := time.Now()
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: now,
		ID:        uuid.NewString(),
	}
}

// NopBus discards everything. Used when the service runs without a broker.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event dropped, no broker configured", "subject", subject)
	return nil
}

func (NopBus) Close() error { return nil }

// Subjects
const (
	BookingCreated    = "booking.created"
	BookingConfirmed  = "booking.confirmed"
	BookingCheckedIn  = "booking.checked_in"
	BookingCheckedOut = "booking.checked_out"
	BookingCancelled  = "booking.cancelled"
	RoomStatusChanged = "room.status_changed"

	NotifySend = "notify.send"
)

// Notification templates understood by the notify service.
const (
	TemplateGuestWelcome         = "guest_welcome"
	TemplateCheckInReminder      = "checkin_reminder"
	TemplateCheckoutConfirmation = "checkout_confirmation"
)

type BookingEvent struct {
	BookingID  int64     `json:"booking_id"`
	RoomNumber string    `json:"room_number"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email,omitempty"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RoomStatusEvent struct {
	RoomNumber string    `json:"room_number"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// GuestStay carries everything a guest email needs to render.
type GuestStay struct {
	BookingID    int64   `json:"booking_id"`
	GuestName    string  `json:"guest_name"`
	RoomNumber   string  `json:"room_number"`
	RoomName     string  `json:"room_name"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	Nights       int     `json:"nights"`
	TotalAmount  float64 `json:"total_amount"`
	AmountPaid   float64 `json:"amount_paid"`
	Balance      float64 `json:"balance"`
	PropertyName string  `json:"property_name"`
	Currency     string  `json:"currency"`
}

type NotificationEvent struct {
	Template  string    `json:"template"`
	Recipient string    `json:"recipient"`
	Stay      GuestStay `json:"stay"`
	SentAt    time.Time `json:"sent_at"`
}
