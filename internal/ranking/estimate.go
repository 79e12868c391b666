package ranking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"backlogtimer/internal/backlog"
)

const (
	weeksPerMonth = 4.33
	weeksPerYear  = 52
)

// maxWeeks is the longest span a time.Duration can hold, about 292 years.
var maxWeeks = float64(math.MaxInt64) / float64(7*24*time.Hour)

var (
	// ErrNoMasteryData is returned when no item carries a mastery median.
	ErrNoMasteryData = errors.New("no mastery time data available")
	// ErrEstimateTooLong is returned when the projection cannot be dated.
	ErrEstimateTooLong = errors.New("estimate is too long to date")
)

// Estimate projects how long the backlog takes at a weekly play budget.
type Estimate struct {
	TotalHours   float64
	Games        int
	HoursPerWeek float64
	Weeks        float64
	Months       float64
	Years        float64
	Completion   time.Time
}

// EstimateCompletion sums mastery medians and spreads them over hoursPerWeek
// starting at now.
func EstimateCompletion(items []backlog.Item, hoursPerWeek float64, now time.Time) (Estimate, error) {
	if hoursPerWeek <= 0 {
		return Estimate{}, errors.New("hours per week must be positive")
	}
	var total float64
	for _, item := range items {
		if item.RAMaster != nil {
			total += *item.RAMaster
		}
	}
	if total <= 0 {
		return Estimate{}, ErrNoMasteryData
	}

	weeks := total / hoursPerWeek
	if weeks >= maxWeeks {
		return Estimate{}, fmt.Errorf("%w: %.0f years at %g hours per week", ErrEstimateTooLong, weeks/weeksPerYear, hoursPerWeek)
	}
	return Estimate{
		TotalHours:   total,
		Games:        len(items),
		HoursPerWeek: hoursPerWeek,
		Weeks:        weeks,
		Months:       weeks / weeksPerMonth,
		Years:        weeks / weeksPerYear,
		Completion:   now.Add(time.Duration(weeks * float64(7*24*time.Hour))),
	}, nil
}

// Outlook is a short verdict on the estimate's length.
func (e Estimate) Outlook() string {
	switch {
	case e.Years > 5:
		return "That's a lot of gaming. Maybe prioritize by efficiency?"
	case e.Years > 1:
		return "A solid multi-year project."
	default:
		return "Very achievable."
	}
}
