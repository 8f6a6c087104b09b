package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	mw "github.com/diagnosis/guestroom-reservations/pkg/middleware"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/consumer"
	"github.com/diagnosis/guestroom-reservations/services/notify/internal/mailer"
)

func main() {
	cfg := config.Load()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	m := newMailer(cfg.Email)
	c := consumer.New(m, 30*time.Second)
	if err := eventBus.QueueSubscribe(events.NotifySend, cfg.NATS.Queue, c.Handle); err != nil {
		logger.Error("Failed to subscribe", "subject", events.NotifySend, "error", err)
		os.Exit(1)
	}
	logger.Info("Listening for notifications", "subject", events.NotifySend, "queue", cfg.NATS.Queue)

	// Health endpoints only
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Recover)
	r.Use(mw.Health(map[string]mw.Check{"nats": eventBus.Ping}))

	port := os.Getenv("NOTIFY_PORT")
	if port == "" {
		port = "8086"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down notify service...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Notify service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting notify service", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Notify service error", "error", err)
		os.Exit(1)
	}
}

// newMailer picks MailerSend when an API key is set, the dev mailer in dev
// mode, and SMTP otherwise.
func newMailer(cfg config.EmailConfig) mailer.Mailer {
	switch {
	case cfg.MailerSendKey != "":
		logger.Info("Using MailerSend for email delivery")
		return mailer.NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	case cfg.DevMode:
		logger.Info("Using dev mailer, emails are printed to the log")
		return mailer.NewDevMailer()
	default:
		logger.Info("Using SMTP for email delivery", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}
