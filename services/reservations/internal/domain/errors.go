package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDateRange       = errors.New("invalid date range")
	ErrRoomNotFound           = errors.New("room not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrRoomUnavailable        = errors.New("room unavailable")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrOutstandingBalance     = errors.New("outstanding balance")
	ErrValidation             = errors.New("validation failed")

	// ErrStatusChanged is returned by stores when a guarded update finds the
	// booking no longer in the expected status.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

type DateRangeError struct {
	Start, End time.Time
	Nights     int
}

func (e *DateRangeError) Error() string {
	if e.Start.IsZero() && e.End.IsZero() {
		return fmt.Sprintf("invalid date range: %d nights", e.Nights)
	}
	return fmt.Sprintf("invalid date range: check-out %s must be after check-in %s",
		e.End.Format(DateLayout), e.Start.Format(DateLayout))
}

func (e *DateRangeError) Is(target error) bool { return target == ErrInvalidDateRange }

type RoomNotFoundError struct {
	Number string
}

func (e *RoomNotFoundError) Error() string { return fmt.Sprintf("room %s not found", e.Number) }

func (e *RoomNotFoundError) Is(target error) bool { return target == ErrRoomNotFound }

type BookingNotFoundError struct {
	ID int64
}

func (e *BookingNotFoundError) Error() string { return fmt.Sprintf("booking %d not found", e.ID) }

func (e *BookingNotFoundError) Is(target error) bool { return target == ErrBookingNotFound }

type RoomUnavailableError struct {
	Number        string
	Range         DateRange
	ConflictingID int64
	Reason        string
}

func (e *RoomUnavailableError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("room %s unavailable for %s: %s", e.Number, e.Range, e.Reason)
	case e.ConflictingID != 0:
		return fmt.Sprintf("room %s unavailable for %s: overlaps booking %d", e.Number, e.Range, e.ConflictingID)
	default:
		return fmt.Sprintf("room %s unavailable for %s", e.Number, e.Range)
	}
}

func (e *RoomUnavailableError) Is(target error) bool { return target == ErrRoomUnavailable }

type StateTransitionError struct {
	BookingID int64
	Operation string
	Expected  []BookingStatus
	Actual    BookingStatus
}

func (e *StateTransitionError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("cannot %s booking %d: status is %s", e.Operation, e.BookingID, e.Actual)
	}
	want := make([]string, len(e.Expected))
	for i, s := range e.Expected {
		want[i] = string(s)
	}
	return fmt.Sprintf("cannot %s booking %d: status is %s, expected %s",
		e.Operation, e.BookingID, e.Actual, strings.Join(want, " or "))
}

func (e *StateTransitionError) Is(target error) bool { return target == ErrInvalidStateTransition }

// OutstandingBalanceError is a warning: the caller may retry with an explicit override.
type OutstandingBalanceError struct {
	BookingID int64
	Balance   float64
}

func (e *OutstandingBalanceError) Error() string {
	return fmt.Sprintf("booking %d has an outstanding balance of %.2f", e.BookingID, e.Balance)
}

func (e *OutstandingBalanceError) Is(target error) bool { return target == ErrOutstandingBalance }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsRecoverable reports whether err is a validation or state error the caller can act on,
// as opposed to a store or infrastructure fault.
func IsRecoverable(err error) bool {
	for _, target := range []error{
		ErrInvalidDateRange, ErrRoomNotFound, ErrBookingNotFound, ErrRoomUnavailable,
		ErrInvalidStateTransition, ErrOutstandingBalance, ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
