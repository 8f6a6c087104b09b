package mailer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
)

const devRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// DevMailer prints messages instead of delivering them.
type DevMailer struct {
	out io.Writer
}

func NewDevMailer() *DevMailer {
	return &DevMailer{out: os.Stdout}
}

func (d *DevMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient email")
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, fmt.Sprintf("%s (%d bytes)", a.Filename, len(a.Data)))
	}

	logger.InfoContext(ctx, "📧 [DEV MAIL] "+msg.Subject,
		"to", msg.To,
		"tag", msg.Tag,
		"attachments", names,
	)

	_, err := fmt.Fprintf(d.out, "\n%s\n📧 %s [%s] (DEV MODE)\n%s\nTo: %s (%s)\nAttachments: %s\n\n%s\n%s\n\n",
		devRule, msg.Subject, msg.Tag, devRule,
		msg.To, msg.ToName, strings.Join(names, ", "),
		msg.Text, devRule)
	return err
}
