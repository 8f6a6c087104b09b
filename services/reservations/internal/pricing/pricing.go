// Package pricing computes the charge for a stay under the property's tiered
// and seasonal rate policy.
package pricing

import (
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/config"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

// Policy is immutable once built; engines copy it at construction.
type Policy struct {
	WeeklyNights    int
	MonthlyNights   int
	WeeklyFactor    float64
	MonthlyFactor   float64
	WeekendPremium  float64
	WeekendDays     []time.Weekday
	SeasonalFactors map[time.Month]float64
}

func DefaultPolicy() Policy {
	return PolicyFromConfig(config.PricingConfig{
		WeeklyNights:     7,
		MonthlyNights:    28,
		WeeklyDiscount:   0.9,
		MonthlyDiscount:  0.8,
		WeekendPremium:   1.25,
		SummerMultiplier: 1.15,
		WinterMultiplier: 0.9,
	})
}

func PolicyFromConfig(c config.PricingConfig) Policy {
	return Policy{
		WeeklyNights:   c.WeeklyNights,
		MonthlyNights:  c.MonthlyNights,
		WeeklyFactor:   c.WeeklyDiscount,
		MonthlyFactor:  c.MonthlyDiscount,
		WeekendPremium: c.WeekendPremium,
		WeekendDays:    []time.Weekday{time.Friday, time.Saturday},
		SeasonalFactors: map[time.Month]float64{
			time.June:     c.SummerMultiplier,
			time.July:     c.SummerMultiplier,
			time.August:   c.SummerMultiplier,
			time.January:  c.WinterMultiplier,
			time.February: c.WinterMultiplier,
		},
	}
}

type Engine struct {
	policy  Policy
	weekend map[time.Weekday]bool
}

func NewEngine(p Policy) *Engine {
	seasonal := make(map[time.Month]float64, len(p.SeasonalFactors))
	for m, f := range p.SeasonalFactors {
		seasonal[m] = f
	}
	p.SeasonalFactors = seasonal
	p.WeekendDays = append([]time.Weekday(nil), p.WeekendDays...)

	weekend := make(map[time.Weekday]bool, len(p.WeekendDays))
	for _, d := range p.WeekendDays {
		weekend[d] = true
	}
	return &Engine{policy: p, weekend: weekend}
}

// Quote prices nights starting at checkIn. checkOut is carried for callers that
// already hold both ends; the nightly walk is driven by checkIn and nights.
func (e *Engine) Quote(room domain.Room, checkIn, checkOut time.Time, nights int) (float64, error) {
	if nights <= 0 {
		return 0, &domain.DateRangeError{Start: checkIn, End: checkOut, Nights: nights}
	}

	switch {
	case nights >= e.policy.MonthlyNights:
		if room.MonthlyRate != nil {
			return domain.RoundCents(*room.MonthlyRate), nil
		}
		return domain.RoundCents(room.DailyRate * float64(nights) * e.policy.MonthlyFactor), nil
	case nights >= e.policy.WeeklyNights:
		if room.WeeklyRate != nil {
			return domain.RoundCents(*room.WeeklyRate), nil
		}
		return domain.RoundCents(room.DailyRate * float64(nights) * e.policy.WeeklyFactor), nil
	}

	start := domain.Day(checkIn)
	var total float64
	for i := 0; i < nights; i++ {
		total += e.nightly(room.DailyRate, start.AddDate(0, 0, i))
	}
	return domain.RoundCents(total), nil
}

// QuoteStay prices a validated date range.
func (e *Engine) QuoteStay(room domain.Room, stay domain.DateRange) (float64, error) {
	if err := stay.Validate(); err != nil {
		return 0, err
	}
	return e.Quote(room, stay.Start, stay.End, stay.Nights())
}

func (e *Engine) nightly(base float64, night time.Time) float64 {
	rate := base
	if e.weekend[night.Weekday()] {
		rate *= e.policy.WeekendPremium
	}
	if f, ok := e.policy.SeasonalFactors[night.Month()]; ok {
		rate *= f
	}
	return rate
}
