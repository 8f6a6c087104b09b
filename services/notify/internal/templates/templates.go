// Package templates renders guest emails from notification events.
package templates

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/receipt"
)

type Email struct {
	Subject string
	Text    string
	HTML    string
}

type email struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

var funcs = map[string]any{
	"money": receipt.Money,
}

func parse(name, subject, text, html string) email {
	return email{
		subject: subject,
		text:    template.Must(template.New(name).Funcs(funcs).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name).Funcs(funcs).Parse(html)),
	}
}

var registry = map[string]email{
	events.TemplateGuestWelcome: parse(events.TemplateGuestWelcome,
		"Welcome to %s",
		`Hi {{.GuestName}},

Welcome to {{.PropertyName}}! You are checked in to Room {{.RoomNumber}}{{if .RoomName}} ({{.RoomName}}){{end}}.

Check-out: {{.CheckOut}} ({{.Nights}} nights)
{{if gt .Balance 0.0}}Balance due: {{money .Balance .Currency}}
{{end}}
Enjoy your stay.
`,
		`<h2>Welcome to {{.PropertyName}}</h2>
<p>Hi {{.GuestName}},</p>
<p>You are checked in to <strong>Room {{.RoomNumber}}</strong>{{if .RoomName}} ({{.RoomName}}){{end}}.</p>
<p>Check-out: <strong>{{.CheckOut}}</strong> ({{.Nights}} nights)</p>
{{if gt .Balance 0.0}}<p>Balance due: <strong>{{money .Balance .Currency}}</strong></p>{{end}}
<p>Enjoy your stay.</p>`),

	events.TemplateCheckInReminder: parse(events.TemplateCheckInReminder,
		"Your stay at %s starts today",
		`Hi {{.GuestName}},

This is a reminder that your stay at {{.PropertyName}} begins on {{.CheckIn}}.

Room: {{.RoomNumber}}{{if .RoomName}} ({{.RoomName}}){{end}}
Check-out: {{.CheckOut}} ({{.Nights}} nights)
Total: {{money .TotalAmount .Currency}}
{{if gt .Balance 0.0}}Balance due at arrival: {{money .Balance .Currency}}
{{end}}
See you soon.
`,
		`<h2>See you soon</h2>
<p>Hi {{.GuestName}},</p>
<p>Your stay at {{.PropertyName}} begins on <strong>{{.CheckIn}}</strong>.</p>
<ul>
<li>Room: {{.RoomNumber}}{{if .RoomName}} ({{.RoomName}}){{end}}</li>
<li>Check-out: {{.CheckOut}} ({{.Nights}} nights)</li>
<li>Total: {{money .TotalAmount .Currency}}</li>
</ul>
{{if gt .Balance 0.0}}<p>Balance due at arrival: <strong>{{money .Balance .Currency}}</strong></p>{{end}}`),

	events.TemplateCheckoutConfirmation: parse(events.TemplateCheckoutConfirmation,
		"Thank you for staying at %s",
		`Hi {{.GuestName}},

You have checked out of Room {{.RoomNumber}}. Thank you for staying with us.

Stay: {{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights)
Total: {{money .TotalAmount .Currency}}
Paid: {{money .AmountPaid .Currency}}
{{if gt .Balance 0.0}}Outstanding: {{money .Balance .Currency}}
{{end}}
Your receipt is attached.
`,
		`<h2>Thank you for staying at {{.PropertyName}}</h2>
<p>Hi {{.GuestName}},</p>
<p>You have checked out of Room {{.RoomNumber}}.</p>
<table>
<tr><td>Stay</td><td>{{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights)</td></tr>
<tr><td>Total</td><td>{{money .TotalAmount .Currency}}</td></tr>
<tr><td>Paid</td><td>{{money .AmountPaid .Currency}}</td></tr>
{{if gt .Balance 0.0}}<tr><td>Outstanding</td><td>{{money .Balance .Currency}}</td></tr>{{end}}
</table>
<p>Your receipt is attached.</p>`),
}

// Render builds the email for a notification template.
func Render(name string, stay events.GuestStay) (Email, error) {
	e, ok := registry[name]
	if !ok {
		return Email{}, fmt.Errorf("unknown notification template %q", name)
	}

	var text, html bytes.Buffer
	if err := e.text.Execute(&text, stay); err != nil {
		return Email{}, fmt.Errorf("failed to render %s text: %w", name, err)
	}
	if err := e.html.Execute(&html, stay); err != nil {
		return Email{}, fmt.Errorf("failed to render %s html: %w", name, err)
	}

	property := stay.PropertyName
	if property == "" {
		property = "our guest rooms"
	}
	return Email{
		Subject: fmt.Sprintf(e.subject, property),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
