// Package ordering keeps the display order of a slot dense.
package ordering

import (
	"sort"

	"github.com/fastygo/planner/domain"
)

// Place moves task into slot at index among others and renumbers the whole
// slot 0..n. others must not contain task; they are ordered by their current
// Order first, keeping the given sequence for equal values. index is clamped
// into [0, len(others)].
//
// The returned slice holds the moved task first, followed by the other
// members in their new order. Every returned task must be persisted: later
// positions are renumbered even when their value happens not to change.
func Place(task domain.Task, slot domain.Slot, others []domain.Task, index int) []domain.Task {
	task.Date = slot.Date
	task.Category = slot.Category

	ordered := make([]domain.Task, len(others))
	copy(ordered, others)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	if index < 0 {
		index = 0
	}
	if index > len(ordered) {
		index = len(ordered)
	}

	sequence := make([]domain.Task, 0, len(ordered)+1)
	sequence = append(sequence, ordered[:index]...)
	sequence = append(sequence, task)
	sequence = append(sequence, ordered[index:]...)

	for i := range sequence {
		sequence[i].Order = i
	}

	affected := make([]domain.Task, 0, len(sequence))
	affected = append(affected, sequence[index])
	affected = append(affected, sequence[:index]...)
	affected = append(affected, sequence[index+1:]...)
	return affected
}

// Dense reports whether the non-label members of slot in tasks carry the
// orders 0..n-1 exactly once each.
func Dense(tasks []domain.Task, slot domain.Slot) bool {
	seen := make(map[int]bool)
	n := 0
	for i := range tasks {
		if !tasks[i].InSlot(slot) {
			continue
		}
		n++
		if seen[tasks[i].Order] {
			return false
		}
		seen[tasks[i].Order] = true
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			return false
		}
	}
	return true
}
