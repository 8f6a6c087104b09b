// Package consumer turns notify.send events into delivered guest emails.
package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/mailer"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/receipt"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/templates"
)

type Consumer struct {
	mailer  mailer.Mailer
	timeout time.Duration
	now     func() time.Time
}

func New(m mailer.Mailer, timeout time.Duration) *Consumer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Consumer{mailer: m, timeout: timeout, now: time.Now}
}

// Handle is the bus callback. Delivery failures are logged and dropped.
func (c *Consumer) Handle(msg *events.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var ev events.NotificationEvent
	if err := msg.Decode(&ev); err != nil {
		logger.Error("Dropping malformed notification", "message_id", msg.ID, "error", err)
		return
	}
	ctx = logger.WithBooking(ctx, ev.Stay.BookingID)

	if err := c.Deliver(ctx, ev); err != nil {
		logger.ErrorContext(ctx, "Notification delivery failed", "template", ev.Template, "error", err)
		return
	}
	logger.InfoContext(ctx, "Notification delivered", "template", ev.Template, "to", ev.Recipient)
}

// Deliver renders ev and sends it. Checkout confirmations carry the PDF receipt.
func (c *Consumer) Deliver(ctx context.Context, ev events.NotificationEvent) error {
	if ev.Recipient == "" {
		return fmt.Errorf("notification %s has no recipient", ev.Template)
	}

	email, err := templates.Render(ev.Template, ev.Stay)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:      ev.Recipient,
		ToName:  ev.Stay.GuestName,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
		Tag:     ev.Template,
	}

	if ev.Template == events.TemplateCheckoutConfirmation {
		issued := ev.SentAt
		if issued.IsZero() {
			issued = c.now()
		}
		pdf, name, err := receipt.Build(ev.Stay, issued)
		if err != nil {
			return err
		}
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename:    name,
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}

	return c.mailer.Send(ctx, msg)
}
