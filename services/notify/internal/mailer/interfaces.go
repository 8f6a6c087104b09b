package mailer

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one guest email. Tag names the notification template so
// providers can group deliveries.
type Message struct {
	To          string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Tag         string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
