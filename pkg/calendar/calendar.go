// Package calendar implements civil-date arithmetic for task scheduling.
//
// Dates are represented as time.Time values at midnight UTC. Callers that
// receive arbitrary timestamps should pass them through Normalize first.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the ISO-8601 calendar date format exchanged at the API boundary.
const Layout = "2006-01-02"

// Date builds a normalized date from its components.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock component, keeping the calendar date as seen in t's location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current date in loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(time.Now().In(loc))
}

// Parse reads a YYYY-MM-DD string.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// AddMonths moves t forward by n months keeping the day of month. The second
// return value is false when the target month has no such day; no clamping
// to the month end is performed.
func AddMonths(t time.Time, n int) (time.Time, bool) {
	year, month, day := t.Date()
	total := int(month) - 1 + n
	year += floorDiv(total, 12)
	target := time.Month(total - floorDiv(total, 12)*12 + 1)

	if day > DaysIn(year, target) {
		return time.Time{}, false
	}
	return Date(year, target, day), true
}

// DaysIn reports the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weekday returns the Monday-first weekday index of t (Monday=0 ... Sunday=6).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// sundayFirst maps a Sunday-first weekday (0=Sunday) to the Monday-first index.
var sundayFirst = [7]int{6, 0, 1, 2, 3, 4, 5}

// MapWeekday converts a single Sunday-first weekday. ok is false when day is outside 0..6.
func MapWeekday(day int) (int, bool) {
	if day < 0 || day > 6 {
		return 0, false
	}
	return sundayFirst[day], true
}

// MapWeekdays converts Sunday-first weekdays into a set of Monday-first indexes.
// Out-of-range values are dropped.
func MapWeekdays(days []int) map[int]struct{} {
	set := make(map[int]struct{}, len(days))
	for _, d := range days {
		if mapped, ok := MapWeekday(d); ok {
			set[mapped] = struct{}{}
		}
	}
	return set
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
