// Package rollover advances unfinished past tasks to the current day.
package rollover

import (
	"time"

	"github.com/fastygo/planner/domain"
)

// IsStale reports whether task should be rolled forward to today. Generated
// recurring instances stay on their own date.
func IsStale(task domain.Task, today time.Time) bool {
	return task.Date != nil &&
		task.Date.Before(today) &&
		!task.Completed &&
		!task.IsLabel &&
		task.RecurringParentID == nil
}

// Advance moves every stale task to today and returns those it changed.
// Slot orders are left untouched; collisions in today's slots are resolved by
// the next move into them.
func Advance(tasks []domain.Task, today time.Time) []domain.Task {
	var moved []domain.Task
	for _, t := range tasks {
		if !IsStale(t, today) {
			continue
		}
		d := today
		t.Date = &d
		moved = append(moved, t)
	}
	return moved
}
