// Package notify hands guest notifications to the notify service over the event bus.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

type Notifier interface {
	SendGuestWelcome(ctx context.Context, n Notice) error
	SendCheckInReminder(ctx context.Context, n Notice) error
	SendCheckoutConfirmation(ctx context.Context, n Notice) error
}

type Notice struct {
	Recipient string
	Stay      events.GuestStay
}

// NoticeFor assembles the notice for booking b in room.
func NoticeFor(b domain.Booking, room domain.Room, property config.PropertyConfig) Notice {
	return Notice{
		Recipient: b.Email,
		Stay: events.GuestStay{
			BookingID:    b.ID,
			GuestName:    b.GuestName,
			RoomNumber:   b.RoomNumber,
			RoomName:     room.Name,
			CheckIn:      b.CheckIn.Format(domain.DateLayout),
			CheckOut:     b.CheckOut.Format(domain.DateLayout),
			Nights:       b.Nights,
			TotalAmount:  b.TotalAmount,
			AmountPaid:   b.AmountPaid,
			Balance:      b.Balance(),
			PropertyName: property.Name,
			Currency:     property.Currency,
		},
	}
}

type EventNotifier struct {
	bus events.Publisher
	now func() time.Time
}

func NewEventNotifier(bus events.Publisher) *EventNotifier {
	return &EventNotifier{bus: bus, now: time.Now}
}

func (n *EventNotifier) SendGuestWelcome(ctx context.Context, notice Notice) error {
	return n.publish(ctx, events.TemplateGuestWelcome, notice)
}

func (n *EventNotifier) SendCheckInReminder(ctx context.Context, notice Notice) error {
	return n.publish(ctx, events.TemplateCheckInReminder, notice)
}

func (n *EventNotifier) SendCheckoutConfirmation(ctx context.Context, notice Notice) error {
	return n.publish(ctx, events.TemplateCheckoutConfirmation, notice)
}

func (n *EventNotifier) publish(ctx context.Context, template string, notice Notice) error {
	if notice.Recipient == "" {
		return fmt.Errorf("no email on file for booking %d", notice.Stay.BookingID)
	}
	err := n.bus.Publish(ctx, events.NotifySend, events.NotificationEvent{
		Template:  template,
		Recipient: notice.Recipient,
		Stay:      notice.Stay,
		SentAt:    n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", template, err)
	}
	return nil
}
