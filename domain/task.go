package domain

import "time"

const (
	DefaultCategory = "personal"
	DefaultColor    = "none"
)

// Task represents a planner item. A non-nil RecurringParentID marks a generated
// instance; the parent referenced by it owns the recurrence rule.
type Task struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Completed         bool            `json:"completed"`
	Date              *time.Time      `json:"date,omitempty"`
	Category          string          `json:"category"`
	IsLabel           bool            `json:"is_label"`
	Color             string          `json:"color"`
	Notes             string          `json:"notes"`
	Recurrence        *RecurrenceRule `json:"recurrence,omitempty"`
	RecurringParentID *string         `json:"recurring_parent_id,omitempty"`
	Order             int             `json:"order"`
	Subtasks          []Subtask       `json:"subtasks,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Subtask is a checklist entry owned by a single task.
type Subtask struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

// Slot is the (date, category) grouping in which display order is scoped.
// A nil Date is the someday slot.
type Slot struct {
	Date     *time.Time
	Category string
}

func (t *Task) Slot() Slot {
	return Slot{Date: t.Date, Category: t.Category}
}

// IsInstance reports whether the task was generated from a recurring parent.
func (t *Task) IsInstance() bool {
	return t != nil && t.RecurringParentID != nil
}

// InSlot reports whether the task is an ordered member of s.
func (t *Task) InSlot(s Slot) bool {
	return !t.IsLabel && t.Category == s.Category && SameDate(t.Date, s.Date)
}

// SameDate compares two optional dates; two nil dates are equal.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Clone returns a deep copy so callers may mutate it without aliasing stored state.
func (t Task) Clone() Task {
	out := t
	if t.Date != nil {
		d := *t.Date
		out.Date = &d
	}
	if t.RecurringParentID != nil {
		id := *t.RecurringParentID
		out.RecurringParentID = &id
	}
	if t.Recurrence != nil {
		rule := t.Recurrence.Clone()
		out.Recurrence = &rule
	}
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return out
}
