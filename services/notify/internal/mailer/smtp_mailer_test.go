package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
)

func TestBuildMIMEWithAttachment(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.3 receipt "), 20)
	raw, err := buildMIME("stays@example.com", Message{
		To:      "guest@example.com",
		ToName:  "Ada Lovelace",
		Subject: "Thanks for staying",
		Tag:     "checkout_confirmation",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Attachments: []Attachment{
			{Filename: "receipt-7.pdf", ContentType: "application/pdf", Data: pdf},
		},
	})
	if err != nil {
		t.Fatalf("buildMIME: %v", err)
	}

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if m.Header.Get("Subject") != "Thanks for staying" {
		t.Fatalf("subject = %q", m.Header.Get("Subject"))
	}
	if m.Header.Get("X-Notification") != "checkout_confirmation" {
		t.Fatalf("tag header = %q", m.Header.Get("X-Notification"))
	}
	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("content type %q: %v", mediaType, err)
	}

	r := multipart.NewReader(m.Body, params["boundary"])
	var (
		sawAlt   bool
		gotBytes []byte
	)
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		ct := p.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "multipart/alternative"):
			sawAlt = true
			body, _ := io.ReadAll(p)
			if !bytes.Contains(body, []byte("plain body")) || !bytes.Contains(body, []byte("<p>html body</p>")) {
				t.Fatalf("alternative part missing bodies: %s", body)
			}
		case strings.HasPrefix(ct, "application/pdf"):
			if p.FileName() != "receipt-7.pdf" {
				t.Fatalf("filename = %q", p.FileName())
			}
			encoded, _ := io.ReadAll(p)
			gotBytes, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
			if err != nil {
				t.Fatalf("decode attachment: %v", err)
			}
		}
	}
	if !sawAlt {
		t.Fatal("missing text/html part")
	}
	if !bytes.Equal(gotBytes, pdf) {
		t.Fatal("attachment did not round-trip")
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	s := NewSMTPMailer("localhost", 1025, "stays@example.com", "", "", false)
	if err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for empty recipient")
	}

	m := NewMailerSend("", "Stays", "stays@example.com")
	if err := m.Send(context.Background(), Message{To: "a@b.co"}); err == nil {
		t.Fatal("expected error when MailerSend is not configured")
	}
}

func TestDevMailerPrintsMessage(t *testing.T) {
	var out bytes.Buffer
	d := &DevMailer{out: &out}

	err := d.Send(context.Background(), Message{
		To: "guest@example.com", Subject: "See you soon", Tag: "check_in_reminder", Text: "Room 101",
		Attachments: []Attachment{{Filename: "receipt-1.pdf", Data: []byte("pdf")}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	for _, want := range []string{"See you soon", "check_in_reminder", "Room 101", "receipt-1.pdf (3 bytes)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, out.String())
		}
	}

	if err := d.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected missing recipient error")
	}
}
