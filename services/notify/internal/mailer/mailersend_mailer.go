package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	return &MailerSendClient{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}
}

func (m *MailerSendClient) Send(ctx context.Context, msg Message) error {
	if m.from.Email == "" {
		return fmt.Errorf("MailerSend sender address not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient email")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out := m.client.Email.NewMessage()
	out.SetFrom(m.from)
	out.SetRecipients([]mailersend.Recipient{{Name: msg.ToName, Email: msg.To}})
	out.SetSubject(msg.Subject)
	out.SetText(msg.Text)
	if msg.HTML != "" {
		out.SetHTML(msg.HTML)
	}
	if msg.Tag != "" {
		out.SetTags([]string{msg.Tag})
	}
	for _, a := range msg.Attachments {
		out.AddAttachment(mailersend.Attachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Data),
		})
	}

	res, err := m.client.Email.Send(ctx, out)
	if err != nil {
		return fmt.Errorf("failed to send %s via MailerSend: %w", msg.Tag, err)
	}
	logger.DebugContext(ctx, "MailerSend accepted message", "message_id", res.Header.Get("X-Message-Id"))
	return nil
}
