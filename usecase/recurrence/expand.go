package recurrence

import (
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
)

const (
	// DefaultHorizonWeeks bounds how far ahead occurrences are generated.
	DefaultHorizonWeeks = 4
	// MonthlyLookahead is the fixed number of future months a monthly rule covers,
	// independent of the horizon.
	MonthlyLookahead = 3
)

// Expand returns the occurrence dates of rule after anchor, in ascending order.
// The anchor itself is never included. A non-positive horizon falls back to
// DefaultHorizonWeeks. The rule is assumed to be valid.
func Expand(anchor time.Time, rule domain.RecurrenceRule, horizonWeeks int) []time.Time {
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}
	anchor = calendar.Normalize(anchor)
	end := calendar.AddWeeks(anchor, horizonWeeks)

	limit := -1
	if rule.Count != nil {
		limit = *rule.Count
	}
	full := func(dates []time.Time) bool {
		return limit >= 0 && len(dates) >= limit
	}

	var dates []time.Time
	switch rule.Type {
	case domain.RecurrenceDaily:
		dates = stepDays(anchor, end, 1, full)

	case domain.RecurrenceWeekly:
		dates = stepDays(anchor, end, 7, full)

	case domain.RecurrenceMonthly:
		for m := 1; m <= MonthlyLookahead && !full(dates); m++ {
			if d, ok := calendar.AddMonths(anchor, m); ok {
				dates = append(dates, d)
			}
		}

	case domain.RecurrenceCustom:
		if len(rule.DaysOfWeek) > 0 {
			days := calendar.MapWeekdays(rule.DaysOfWeek)
			for d := calendar.AddDays(anchor, 1); !d.After(end) && !full(dates); d = calendar.AddDays(d, 1) {
				if _, ok := days[calendar.Weekday(d)]; ok {
					dates = append(dates, d)
				}
			}
		} else {
			dates = stepDays(anchor, end, rule.IntervalOrDefault(), full)
		}
	}

	return dates
}

func stepDays(anchor, end time.Time, step int, full func([]time.Time) bool) []time.Time {
	var dates []time.Time
	for d := calendar.AddDays(anchor, step); !d.After(end) && !full(dates); d = calendar.AddDays(d, step) {
		dates = append(dates, d)
	}
	return dates
}
