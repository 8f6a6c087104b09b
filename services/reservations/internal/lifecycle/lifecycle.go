// Package lifecycle advances bookings through confirmation, arrival, departure
// and cancellation. Each transition commits booking and room changes together;
// ledger, notification and event side effects run only after the commit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/pkg/events"
	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/availability"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/effects"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/ledger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/locking"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/notify"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/repository"
)

type Deps struct {
	Store    repository.Store
	Locks    locking.Locker
	Ledger   ledger.Ledger
	Notifier notify.Notifier
	Events   events.Publisher
	Effects  *effects.Dispatcher
	Property config.PropertyConfig
	Now      func() time.Time
	// OnCommit runs synchronously after every committed transition.
	OnCommit func()
}

type Lifecycle struct {
	store    repository.Store
	locks    locking.Locker
	ledger   ledger.Ledger
	notifier notify.Notifier
	events   events.Publisher
	effects  *effects.Dispatcher
	property config.PropertyConfig
	now      func() time.Time
	onCommit func()
}

func New(d Deps) *Lifecycle {
	l := &Lifecycle{
		store:    d.Store,
		locks:    d.Locks,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		events:   d.Events,
		effects:  d.Effects,
		property: d.Property,
		now:      d.Now,
		onCommit: d.OnCommit,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.effects == nil {
		l.effects = effects.NewDispatcher(0)
	}
	if l.onCommit == nil {
		l.onCommit = func() {}
	}
	return l
}

// Confirm moves a pending booking to confirmed. The room's held dates are
// re-checked under the room lock because pending bookings do not hold dates.
func (l *Lifecycle) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx = logger.WithBooking(ctx, id)
	var confirmed *domain.Booking

	err := l.transition(ctx, id, "confirm", func(tx repository.Store, b *domain.Booking) error {
		if b.Status != domain.BookingPending {
			return transitionErr(b, "confirm", domain.BookingPending)
		}
		room, err := tx.Rooms().Get(ctx, b.RoomNumber)
		if err != nil {
			return err
		}
		if !room.Bookable() {
			return &domain.RoomUnavailableError{Number: room.Number, Range: b.Stay(), Reason: "room is under maintenance"}
		}
		held, err := tx.Bookings().ListByRoom(ctx, b.RoomNumber)
		if err != nil {
			return err
		}
		if c := availability.Conflict(b.Stay(), b.RoomNumber, held, b.ID); c != nil {
			return &domain.RoomUnavailableError{Number: b.RoomNumber, Range: b.Stay(), ConflictingID: c.ID}
		}

		confirmed, err = tx.Bookings().Update(ctx, id, domain.BookingPatch{
			IfStatus: domain.Ptr(domain.BookingPending),
			Status:   domain.Ptr(domain.BookingConfirmed),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Booking confirmed", "room", confirmed.RoomNumber)
	l.publish(ctx, events.BookingConfirmed, *confirmed)
	return confirmed, nil
}

// CheckIn moves a confirmed booking to checked in and marks the room occupied.
// An unpaid balance stops the transition with *domain.OutstandingBalanceError
// unless overrideBalance is set.
func (l *Lifecycle) CheckIn(ctx context.Context, id int64, overrideBalance bool) (*domain.Booking, error) {
	ctx = logger.WithBooking(ctx, id)
	var (
		checkedIn *domain.Booking
		room      *domain.Room
	)

	err := l.transition(ctx, id, "check in", func(tx repository.Store, b *domain.Booking) error {
		if b.Status != domain.BookingConfirmed {
			return transitionErr(b, "check in", domain.BookingConfirmed)
		}
		if balance := b.Balance(); balance > 0 && !overrideBalance {
			return &domain.OutstandingBalanceError{BookingID: b.ID, Balance: balance}
		}

		var err error
		checkedIn, err = tx.Bookings().Update(ctx, id, domain.BookingPatch{
			IfStatus: domain.Ptr(domain.BookingConfirmed),
			Status:   domain.Ptr(domain.BookingCheckedIn),
		})
		if err != nil {
			return err
		}
		room, err = tx.Rooms().Update(ctx, b.RoomNumber, domain.RoomPatch{
			Status: domain.Ptr(domain.RoomOccupied),
			Occupant: &domain.Occupant{
				BookingID: b.ID,
				GuestName: b.GuestName,
				CheckIn:   b.CheckIn,
				CheckOut:  b.CheckOut,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Guest checked in", "room", room.Number, "override_balance", overrideBalance)
	notice := notify.NoticeFor(*checkedIn, *room, l.property)
	l.effects.Go(ctx, "send guest welcome", func(ctx context.Context) error {
		return l.notifier.SendGuestWelcome(ctx, notice)
	})
	l.publish(ctx, events.BookingCheckedIn, *checkedIn)
	return checkedIn, nil
}

// CheckOut applies additionalPayment, closes the booking and frees the room.
// The final amount paid is recorded in the ledger once the change is committed.
func (l *Lifecycle) CheckOut(ctx context.Context, id int64, additionalPayment float64) (*domain.Booking, error) {
	if additionalPayment < 0 || math.IsNaN(additionalPayment) || math.IsInf(additionalPayment, 0) {
		return nil, &domain.ValidationError{Field: "additional_payment", Message: "must be a non-negative amount"}
	}

	ctx = logger.WithBooking(ctx, id)
	now := l.now().UTC()
	var (
		checkedOut *domain.Booking
		room       *domain.Room
	)

	err := l.transition(ctx, id, "check out", func(tx repository.Store, b *domain.Booking) error {
		if b.Status != domain.BookingCheckedIn {
			return transitionErr(b, "check out", domain.BookingCheckedIn)
		}
		paid := domain.RoundCents(b.AmountPaid + additionalPayment)

		var err error
		checkedOut, err = tx.Bookings().Update(ctx, id, domain.BookingPatch{
			IfStatus:      domain.Ptr(domain.BookingCheckedIn),
			Status:        domain.Ptr(domain.BookingCheckedOut),
			AmountPaid:    &paid,
			PaymentStatus: domain.Ptr(domain.PaymentStatusFor(b.TotalAmount, paid)),
		})
		if err != nil {
			return err
		}
		room, err = tx.Rooms().Update(ctx, b.RoomNumber, domain.RoomPatch{
			Status:        domain.Ptr(domain.RoomVacant),
			ClearOccupant: true,
			LastCleaned:   &now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Guest checked out", "room", room.Number, "amount_paid", checkedOut.AmountPaid)
	entry := ledger.CheckoutEntry(*checkedOut, now)
	l.effects.Go(ctx, "record ledger entry", func(ctx context.Context) error {
		return l.ledger.Record(ctx, entry)
	})
	notice := notify.NoticeFor(*checkedOut, *room, l.property)
	l.effects.Go(ctx, "send checkout confirmation", func(ctx context.Context) error {
		return l.notifier.SendCheckoutConfirmation(ctx, notice)
	})
	l.publish(ctx, events.BookingCheckedOut, *checkedOut)
	return checkedOut, nil
}

// Cancel closes a pending or confirmed booking. Room state is left alone.
func (l *Lifecycle) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx = logger.WithBooking(ctx, id)
	var cancelled *domain.Booking

	err := l.transition(ctx, id, "cancel", func(tx repository.Store, b *domain.Booking) error {
		if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
			return transitionErr(b, "cancel", domain.BookingPending, domain.BookingConfirmed)
		}
		var err error
		cancelled, err = tx.Bookings().Update(ctx, id, domain.BookingPatch{
			IfStatus: domain.Ptr(b.Status),
			Status:   domain.Ptr(domain.BookingCancelled),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Booking cancelled", "room", cancelled.RoomNumber)
	l.publish(ctx, events.BookingCancelled, *cancelled)
	return cancelled, nil
}

// Wait blocks until all dispatched side effects have finished.
func (l *Lifecycle) Wait() {
	l.effects.Wait()
}

// transition locks the booking's room, re-reads the booking inside a store
// transaction and hands it to fn. A guarded write that lost a race is reported
// as a state transition error against the status that won.
func (l *Lifecycle) transition(ctx context.Context, id int64, op string, fn func(tx repository.Store, b *domain.Booking) error) error {
	b, err := l.store.Bookings().Get(ctx, id)
	if err != nil {
		return err
	}

	release, err := l.locks.Lock(ctx, locking.RoomKey(b.RoomNumber))
	if err != nil {
		return fmt.Errorf("failed to lock room %s: %w", b.RoomNumber, err)
	}
	defer release()

	err = l.store.Atomic(ctx, func(tx repository.Store) error {
		current, err := tx.Bookings().Get(ctx, id)
		if err != nil {
			return err
		}
		return fn(tx, current)
	})
	if errors.Is(err, domain.ErrStatusChanged) {
		latest, getErr := l.store.Bookings().Get(ctx, id)
		if getErr != nil {
			return fmt.Errorf("failed to reload booking %d: %w", id, getErr)
		}
		return &domain.StateTransitionError{BookingID: id, Operation: op, Actual: latest.Status}
	}
	if err != nil {
		return err
	}

	l.onCommit()
	return nil
}

func (l *Lifecycle) publish(ctx context.Context, subject string, b domain.Booking) {
	ev := BookingEvent(b, l.now())
	l.effects.Go(ctx, "publish "+subject, func(ctx context.Context) error {
		return l.events.Publish(ctx, subject, ev)
	})
}

// BookingEvent builds the bus payload for b.
func BookingEvent(b domain.Booking, at time.Time) events.BookingEvent {
	return events.BookingEvent{
		BookingID:  b.ID,
		RoomNumber: b.RoomNumber,
		GuestName:  b.GuestName,
		GuestEmail: b.Email,
		CheckIn:    b.CheckIn.Format(domain.DateLayout),
		CheckOut:   b.CheckOut.Format(domain.DateLayout),
		Status:     string(b.Status),
		Amount:     b.AmountPaid,
		OccurredAt: at.UTC(),
	}
}

func transitionErr(b *domain.Booking, op string, expected ...domain.BookingStatus) error {
	return &domain.StateTransitionError{BookingID: b.ID, Operation: op, Expected: expected, Actual: b.Status}
}
