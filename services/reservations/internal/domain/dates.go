package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date, keeping the date as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateRange, s)
	}
	return t, nil
}

// DateRange is a half-open [Start, End) span of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalises both ends to calendar days and requires End > Start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if !r.End.After(r.Start) {
		return &DateRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Nights is the number of whole days between Start and End.
func (r DateRange) Nights() int {
	return int(Day(r.End).Sub(Day(r.Start)).Hours() / 24)
}

// Overlaps reports half-open intersection. Ranges that only share a boundary do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.End.After(o.Start) && r.Start.Before(o.End)
}

// Contains reports whether day falls inside [Start, End).
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// MonthWindow returns [first of month, first of next month) for the month containing asOf.
func MonthWindow(asOf time.Time) DateRange {
	y, m, _ := asOf.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}
