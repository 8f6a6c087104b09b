package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/karlseguin/ccache/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/diagnosis/guestroom-reservations/internal/utils"
	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/analytics"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/availability"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/effects"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/ledger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/lifecycle"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/locking"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/notify"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/pricing"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/repository"
)

// RoomQuote is a room together with the price of a requested stay.
type RoomQuote struct {
	Room   domain.Room `json:"room"`
	Nights int         `json:"nights"`
	Total  float64     `json:"total"`
}

type ReservationService interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	FindAvailableRooms(ctx context.Context, stay domain.DateRange) ([]RoomQuote, error)
	Quote(ctx context.Context, roomNumber string, stay domain.DateRange) (*RoomQuote, error)
	SetRoomStatus(ctx context.Context, roomNumber string, status domain.RoomStatus, notes string) (*domain.Room, error)

	Reserve(ctx context.Context, req domain.BookingRequest, idempotencyKey string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	Confirm(ctx context.Context, id int64) (*domain.Booking, error)
	CheckIn(ctx context.Context, id int64, overrideBalance bool) (*domain.Booking, error)
	CheckOut(ctx context.Context, id int64, additionalPayment float64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)

	ComputeMetrics(ctx context.Context, asOf time.Time) (*domain.Metrics, error)
	TodayActivity(ctx context.Context, day time.Time) (*domain.DailyActivity, error)
	SendCheckInReminders(ctx context.Context, day time.Time) (int, error)
	PurgeIdempotencyKeys(ctx context.Context) (int64, error)

	// Today is the current calendar date in the property's time zone.
	Today() time.Time
	// Wait blocks until dispatched side effects have finished.
	Wait()
}

type Deps struct {
	Store    repository.Store
	Locks    locking.Locker
	Pricing  *pricing.Engine
	Ledger   ledger.Ledger
	Notifier notify.Notifier
	Events   events.Publisher
	Effects  *effects.Dispatcher
	Property config.PropertyConfig
	Cache    config.CacheConfig
	Now      func() time.Time
}

type reservationService struct {
	store     repository.Store
	locks     locking.Locker
	pricing   *pricing.Engine
	lifecycle *lifecycle.Lifecycle
	notifier  notify.Notifier
	events    events.Publisher
	effects   *effects.Dispatcher
	property  config.PropertyConfig
	now       func() time.Time

	metrics    *ccache.Cache[*domain.Metrics]
	metricsTTL time.Duration
	flight     singleflight.Group
	generation atomic.Uint64
}

func NewReservationService(d Deps) ReservationService {
	s := &reservationService{
		store:      d.Store,
		locks:      d.Locks,
		pricing:    d.Pricing,
		notifier:   d.Notifier,
		events:     d.Events,
		effects:    d.Effects,
		property:   d.Property,
		now:        d.Now,
		metricsTTL: d.Cache.MetricsTTL,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.pricing == nil {
		s.pricing = pricing.NewEngine(pricing.DefaultPolicy())
	}
	if s.effects == nil {
		s.effects = effects.NewDispatcher(0)
	}
	if s.events == nil {
		s.events = events.NopBus{}
	}
	if s.metricsTTL <= 0 {
		s.metricsTTL = 5 * time.Minute
	}
	maxSize := d.Cache.MaxSize
	if maxSize <= 0 {
		maxSize = 64
	}
	s.metrics = ccache.New(ccache.Configure[*domain.Metrics]().MaxSize(maxSize))

	s.lifecycle = lifecycle.New(lifecycle.Deps{
		Store:    d.Store,
		Locks:    d.Locks,
		Ledger:   d.Ledger,
		Notifier: d.Notifier,
		Events:   s.events,
		Effects:  s.effects,
		Property: d.Property,
		Now:      s.now,
		OnCommit: s.invalidateMetrics,
	})
	return s
}

func (s *reservationService) Today() time.Time {
	return domain.Day(s.now().In(s.property.Location()))
}

func (s *reservationService) Wait() {
	s.effects.Wait()
}

// ---------- Rooms ----------

func (s *reservationService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *reservationService) FindAvailableRooms(ctx context.Context, stay domain.DateRange) ([]RoomQuote, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	rooms, bookings, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	free, err := availability.FindAvailableRooms(stay, rooms, bookings)
	if err != nil {
		return nil, err
	}

	quotes := make([]RoomQuote, 0, len(free))
	for _, room := range free {
		total, err := s.pricing.QuoteStay(room, stay)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, RoomQuote{Room: room, Nights: stay.Nights(), Total: total})
	}
	return quotes, nil
}

func (s *reservationService) Quote(ctx context.Context, roomNumber string, stay domain.DateRange) (*RoomQuote, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	room, err := s.store.Rooms().Get(ctx, roomNumber)
	if err != nil {
		return nil, err
	}
	total, err := s.pricing.QuoteStay(*room, stay)
	if err != nil {
		return nil, err
	}
	return &RoomQuote{Room: *room, Nights: stay.Nights(), Total: total}, nil
}

// SetRoomStatus is the maintenance path for room state. Occupancy is owned by
// check-in and check-out, so Occupied cannot be set here and an occupied room
// cannot be released while its guest is still checked in.
func (s *reservationService) SetRoomStatus(ctx context.Context, roomNumber string, status domain.RoomStatus, notes string) (*domain.Room, error) {
	if status == domain.RoomOccupied {
		return nil, &domain.ValidationError{Field: "status", Message: "rooms become occupied through check-in"}
	}
	ctx = logger.WithRoom(ctx, roomNumber)

	release, err := s.locks.Lock(ctx, locking.RoomKey(roomNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to lock room %s: %w", roomNumber, err)
	}
	defer release()

	now := s.now().UTC()
	var updated *domain.Room
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		room, err := tx.Rooms().Get(ctx, roomNumber)
		if err != nil {
			return err
		}
		if room.Status == domain.RoomOccupied && room.Occupant != nil {
			held, err := tx.Bookings().Get(ctx, room.Occupant.BookingID)
			if err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
				return err
			}
			if held != nil && held.Status == domain.BookingCheckedIn {
				return &domain.ValidationError{
					Field:   "status",
					Message: fmt.Sprintf("room %s is occupied by booking %d; check the guest out first", room.Number, held.ID),
				}
			}
		}

		patch := domain.RoomPatch{Status: &status, ClearOccupant: true}
		switch status {
		case domain.RoomVacant:
			patch.LastCleaned = &now
			patch.MaintenanceNotes = domain.Ptr("")
		case domain.RoomMaintenance:
			patch.MaintenanceNotes = domain.Ptr(strings.TrimSpace(notes))
		}
		updated, err = tx.Rooms().Update(ctx, roomNumber, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMetrics()
	logger.InfoContext(ctx, "Room status changed", "status", updated.Status)
	ev := events.RoomStatusEvent{
		RoomNumber: updated.Number,
		Status:     string(updated.Status),
		Notes:      updated.MaintenanceNotes,
		ChangedAt:  now,
	}
	s.effects.Go(ctx, "publish "+events.RoomStatusChanged, func(ctx context.Context) error {
		return s.events.Publish(ctx, events.RoomStatusChanged, ev)
	})
	return updated, nil
}

// ---------- Bookings ----------

// Reserve validates the request and appends a booking. The availability check
// and the write happen under the room lock inside one store transaction, so
// two concurrent requests for overlapping dates cannot both succeed. A repeated
// idempotency key returns the booking the first request created.
func (s *reservationService) Reserve(ctx context.Context, req domain.BookingRequest, idempotencyKey string) (*domain.Booking, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		if b, err := s.replay(ctx, s.store, idempotencyKey); err != nil || b != nil {
			return b, err
		}
	}

	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	stay, err := domain.NewDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithRoom(ctx, req.RoomNumber)
	release, err := s.locks.Lock(ctx, locking.RoomKey(req.RoomNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to lock room %s: %w", req.RoomNumber, err)
	}
	defer release()

	var (
		booking  *domain.Booking
		replayed bool
	)
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if idempotencyKey != "" {
			b, err := s.replay(ctx, tx, idempotencyKey)
			if err != nil {
				return err
			}
			if b != nil {
				booking, replayed = b, true
				return nil
			}
		}

		room, err := tx.Rooms().Get(ctx, req.RoomNumber)
		if err != nil {
			return err
		}
		if !room.Bookable() {
			return &domain.RoomUnavailableError{Number: room.Number, Range: stay, Reason: "room is under maintenance"}
		}
		if req.GuestCount > room.MaxOccupancy {
			return &domain.ValidationError{
				Field:   "guest_count",
				Message: fmt.Sprintf("room %s sleeps at most %d", room.Number, room.MaxOccupancy),
			}
		}

		held, err := tx.Bookings().ListByRoom(ctx, room.Number)
		if err != nil {
			return err
		}
		if c := availability.Conflict(stay, room.Number, held, 0); c != nil {
			return &domain.RoomUnavailableError{Number: room.Number, Range: stay, ConflictingID: c.ID}
		}

		total, err := s.pricing.QuoteStay(*room, stay)
		if err != nil {
			return err
		}

		status := domain.BookingPending
		if req.Confirmed {
			status = domain.BookingConfirmed
		}
		deposit := domain.RoundCents(req.Deposit)
		b := &domain.Booking{
			GuestName:       req.GuestName,
			Email:           req.Email,
			Phone:           req.Phone,
			RoomNumber:      room.Number,
			CheckIn:         stay.Start,
			CheckOut:        stay.End,
			Nights:          stay.Nights(),
			GuestCount:      req.GuestCount,
			Purpose:         req.Purpose,
			SpecialRequests: req.SpecialRequests,
			TotalAmount:     total,
			AmountPaid:      deposit,
			PaymentStatus:   domain.PaymentStatusFor(total, deposit),
			Status:          status,
			Source:          req.Source,
			Notes:           req.Notes,
		}
		if _, err := tx.Bookings().Append(ctx, b); err != nil {
			return err
		}
		if idempotencyKey != "" {
			if err := tx.Idempotency().Remember(ctx, idempotencyKey, b.ID); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return booking, nil
	}

	s.invalidateMetrics()
	ctx = logger.WithBooking(ctx, booking.ID)
	logger.InfoContext(ctx, "Booking created",
		"room", booking.RoomNumber,
		"stay", booking.Stay().String(),
		"status", booking.Status,
		"total", booking.TotalAmount,
	)
	ev := lifecycle.BookingEvent(*booking, s.now())
	s.effects.Go(ctx, "publish "+events.BookingCreated, func(ctx context.Context) error {
		return s.events.Publish(ctx, events.BookingCreated, ev)
	})
	return booking, nil
}

func (s *reservationService) replay(ctx context.Context, store repository.Store, key string) (*domain.Booking, error) {
	id, err := store.Idempotency().Lookup(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if id == 0 {
		return nil, nil
	}
	logger.DebugContext(ctx, "Replaying idempotent reservation", "booking_id", id)
	return store.Bookings().Get(ctx, id)
}

func (s *reservationService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.store.Bookings().Get(ctx, id)
}

func (s *reservationService) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.lifecycle.Confirm(ctx, id)
}

func (s *reservationService) CheckIn(ctx context.Context, id int64, overrideBalance bool) (*domain.Booking, error) {
	return s.lifecycle.CheckIn(ctx, id, overrideBalance)
}

func (s *reservationService) CheckOut(ctx context.Context, id int64, additionalPayment float64) (*domain.Booking, error) {
	return s.lifecycle.CheckOut(ctx, id, additionalPayment)
}

func (s *reservationService) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.lifecycle.Cancel(ctx, id)
}

func (s *reservationService) PurgeIdempotencyKeys(ctx context.Context) (int64, error) {
	n, err := s.store.Idempotency().Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge idempotency keys: %w", err)
	}
	return n, nil
}

// ---------- Reporting ----------

// ComputeMetrics serves the dashboard for the month containing asOf. Results
// are cached per day until the next booking or room change.
func (s *reservationService) ComputeMetrics(ctx context.Context, asOf time.Time) (*domain.Metrics, error) {
	asOf = domain.Day(asOf)
	key := fmt.Sprintf("%d:%s", s.generation.Load(), asOf.Format(domain.DateLayout))

	if item := s.metrics.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		rooms, bookings, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		m := analytics.ComputeMetrics(bookings, rooms, asOf)
		s.metrics.Set(key, &m, s.metricsTTL)
		return &m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Metrics), nil
}

// TodayActivity lists the confirmed arrivals and checked-in departures for day.
func (s *reservationService) TodayActivity(ctx context.Context, day time.Time) (*domain.DailyActivity, error) {
	day = domain.Day(day)
	bookings, err := s.store.Bookings().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	activity := &domain.DailyActivity{
		Day:        day,
		Arrivals:   []domain.Booking{},
		Departures: []domain.Departure{},
	}
	for _, b := range bookings {
		switch {
		case b.Status == domain.BookingConfirmed && domain.Day(b.CheckIn).Equal(day):
			activity.Arrivals = append(activity.Arrivals, b)
		case b.Status == domain.BookingCheckedIn && domain.Day(b.CheckOut).Equal(day):
			activity.Departures = append(activity.Departures, domain.Departure{Booking: b, Balance: b.Balance()})
		}
	}
	return activity, nil
}

// SendCheckInReminders dispatches a reminder to every arrival on day that has
// an email address and reports how many were dispatched.
func (s *reservationService) SendCheckInReminders(ctx context.Context, day time.Time) (int, error) {
	activity, err := s.TodayActivity(ctx, day)
	if err != nil {
		return 0, err
	}
	if len(activity.Arrivals) == 0 {
		return 0, nil
	}

	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	byNumber := make(map[string]domain.Room, len(rooms))
	for _, r := range rooms {
		byNumber[r.Number] = r
	}

	sent := 0
	for _, b := range activity.Arrivals {
		if b.Email == "" {
			continue
		}
		room, ok := byNumber[b.RoomNumber]
		if !ok {
			room = domain.Room{Number: b.RoomNumber}
		}
		notice := notify.NoticeFor(b, room, s.property)
		s.effects.Go(logger.WithBooking(ctx, b.ID), "send check-in reminder", func(ctx context.Context) error {
			return s.notifier.SendCheckInReminder(ctx, notice)
		})
		sent++
	}
	logger.InfoContext(ctx, "Check-in reminders dispatched", "day", day.Format(domain.DateLayout), "count", sent)
	return sent, nil
}

// snapshot loads rooms and bookings concurrently.
func (s *reservationService) snapshot(ctx context.Context) ([]domain.Room, []domain.Booking, error) {
	var (
		rooms    []domain.Room
		bookings []domain.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if rooms, err = s.store.Rooms().List(gctx); err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bookings, err = s.store.Bookings().List(gctx); err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rooms, bookings, nil
}

// invalidateMetrics moves the cache to a new generation. Computations that
// started before the change store under the old key and are never read.
func (s *reservationService) invalidateMetrics() {
	s.generation.Add(1)
	s.metrics.Clear()
}

func normalizeRequest(req *domain.BookingRequest) error {
	req.GuestName = utils.NormalizeString(req.GuestName)
	if req.GuestName == "" {
		return &domain.ValidationError{Field: "guest_name", Message: "is required"}
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if !utils.IsValidEmail(req.Email) {
		return &domain.ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if req.Phone != "" {
		if !utils.IsValidPhone(req.Phone) {
			return &domain.ValidationError{Field: "phone", Message: "must contain at least 7 digits"}
		}
		req.Phone = utils.NormalizePhone(req.Phone)
	}
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if req.RoomNumber == "" {
		return &domain.ValidationError{Field: "room_number", Message: "is required"}
	}
	if req.GuestCount == 0 {
		req.GuestCount = 1
	}
	if req.GuestCount < 1 {
		return &domain.ValidationError{Field: "guest_count", Message: "must be at least 1"}
	}
	if req.Deposit < 0 || math.IsNaN(req.Deposit) || math.IsInf(req.Deposit, 0) {
		return &domain.ValidationError{Field: "deposit", Message: "must be a non-negative amount"}
	}
	req.Purpose = utils.NormalizeString(req.Purpose)
	req.Source = utils.NormalizeString(req.Source)
	if req.Source == "" {
		req.Source = "direct"
	}
	return nil
}
