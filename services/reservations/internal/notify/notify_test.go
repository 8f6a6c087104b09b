package notify

import (
	"context"
	"testing"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

type recordingBus struct {
	subjects []string
	payloads []interface{}
}

func (b *recordingBus) Publish(_ context.Context, subject string, data interface{}) error {
	b.subjects = append(b.subjects, subject)
	b.payloads = append(b.payloads, data)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func TestEventNotifierPublishesTemplates(t *testing.T) {
	bus := &recordingBus{}
	n := NewEventNotifier(bus)

	booking := domain.Booking{
		ID: 5, GuestName: "Lin", Email: "lin@example.com", RoomNumber: "2",
		CheckIn:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		Nights:   3, TotalAmount: 300, AmountPaid: 120,
	}
	notice := NoticeFor(booking, domain.Room{Number: "2", Name: "Loft"}, config.PropertyConfig{Name: "Parsonage", Currency: "USD"})

	ctx := context.Background()
	_ = n.SendGuestWelcome(ctx, notice)
	_ = n.SendCheckInReminder(ctx, notice)
	_ = n.SendCheckoutConfirmation(ctx, notice)

	if len(bus.payloads) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(bus.payloads))
	}
	want := []string{events.TemplateGuestWelcome, events.TemplateCheckInReminder, events.TemplateCheckoutConfirmation}
	for i, p := range bus.payloads {
		ev := p.(events.NotificationEvent)
		if bus.subjects[i] != events.NotifySend {
			t.Errorf("unexpected subject %s", bus.subjects[i])
		}
		if ev.Template != want[i] {
			t.Errorf("publish %d: template %s, want %s", i, ev.Template, want[i])
		}
		if ev.Recipient != "lin@example.com" || ev.Stay.Balance != 180 || ev.Stay.RoomName != "Loft" {
			t.Errorf("unexpected event: %+v", ev)
		}
		if ev.Stay.CheckIn != "2025-08-01" || ev.Stay.PropertyName != "Parsonage" {
			t.Errorf("unexpected stay: %+v", ev.Stay)
		}
	}
}

func TestEventNotifierRequiresRecipient(t *testing.T) {
	bus := &recordingBus{}
	err := NewEventNotifier(bus).SendGuestWelcome(context.Background(), Notice{Stay: events.GuestStay{BookingID: 3}})
	if err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if len(bus.payloads) != 0 {
		t.Fatal("nothing should be published without a recipient")
	}
}
