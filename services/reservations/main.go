package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/database"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	mw "github.com/diagnosis/guestroom-reservations/pkg/middleware"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/effects"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/handlers"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/ledger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/locking"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/notify"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/pricing"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/repository"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/scheduler"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()
	fail := func(msg string, err error) {
		logger.Error(msg, "error", err)
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
		os.Exit(1)
	}

	// Storage
	var (
		store      repository.Store
		ledgerSink ledger.Ledger
		hits       mw.Counter
		checks     = map[string]mw.Check{}
	)
	switch cfg.Database.Driver {
	case "memory":
		rooms, err := repository.LoadRooms(cfg.Property.RoomsFile)
		if err != nil {
			fail("Failed to load rooms", err)
		}
		store = repository.NewMemoryStore(rooms)
		ledgerSink = ledger.LogLedger{}
		hits = mw.NewMemoryCounter()
		logger.Warn("Using in-memory storage; bookings are lost on restart", "rooms", len(rooms))
	default:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			fail("Failed to connect to database", err)
		}
		cleanup = append(cleanup, pool.Close)

		if err := database.Migrate(ctx, pool); err != nil {
			fail("Failed to apply migrations", err)
		}
		if rooms, err := repository.LoadRooms(cfg.Property.RoomsFile); err == nil {
			n, err := repository.SeedRooms(ctx, pool, rooms)
			if err != nil {
				fail("Failed to seed rooms", err)
			}
			logger.Info("Room inventory seeded", "file", cfg.Property.RoomsFile, "inserted", n)
		} else if !errors.Is(err, os.ErrNotExist) {
			fail("Failed to load rooms", err)
		}
		store = repository.NewPostgresStore(pool)
		checks["postgres"] = pool.Ping

		db, err := ledger.Open(cfg.Database.URL)
		if err != nil {
			fail("Failed to open ledger", err)
		}
		cleanup = append(cleanup, func() { db.Close() })
		ledgerSink = ledger.NewSQLLedger(db)
		hits = mw.NewPostgresCounter(pool)
	}

	// Room locks
	var locks locking.Locker = locking.NewLocal()
	if cfg.Redis.URL != "" {
		rl, err := locking.Connect(ctx, cfg.Redis.URL, cfg.Redis.LockTTL)
		if err != nil {
			fail("Failed to connect to Redis", err)
		}
		cleanup = append(cleanup, func() { rl.Close() })
		locks = rl
		checks["redis"] = rl.Ping
		logger.Info("Room locks backed by Redis")
	}

	// Event bus
	var bus events.Publisher = events.NopBus{}
	if cfg.NATS.URL != "" {
		nb, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			fail("Failed to connect to NATS", err)
		}
		cleanup = append(cleanup, func() { nb.Close() })
		bus = nb
		checks["nats"] = nb.Ping
	}

	dispatcher := effects.NewDispatcher(10 * time.Second)
	svc := service.NewReservationService(service.Deps{
		Store:    store,
		Locks:    locks,
		Pricing:  pricing.NewEngine(pricing.PolicyFromConfig(cfg.Pricing)),
		Ledger:   ledgerSink,
		Notifier: notify.NewEventNotifier(bus),
		Events:   bus,
		Effects:  dispatcher,
		Property: cfg.Property,
		Cache:    cfg.Cache,
	})
	cleanup = append(cleanup, svc.Wait)

	sched := scheduler.New(svc, cfg.Property.ReminderSchedule, cfg.Property.Location())
	if err := sched.Start(); err != nil {
		fail("Failed to start scheduler", err)
	}
	cleanup = append(cleanup, sched.Stop)

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("reservations"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(mw.CORS())
	r.Use(mw.Health(checks))
	intakeLimit := mw.NewRateLimiter(hits, mw.RateLimitConfig{
		Requests: cfg.Limits.BookingRequests,
		Window:   cfg.Limits.BookingWindow,
	})
	handlers.New(svc, cfg.Auth.JWTSecret).LimitIntake(intakeLimit.Middleware()).Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
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

		logger.Info("Shutting down reservations service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Reservations service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting reservations service",
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
		"property", cfg.Property.Name,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fail("Reservations service error", err)
	}
}
