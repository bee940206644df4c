package domain

import "fmt"

// RecurrenceType names the cadence of a recurrence rule.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return true
	}
	return false
}

// RecurrenceRule describes how a parent task repeats. Interval and DaysOfWeek
// only apply to custom rules; DaysOfWeek uses the 0=Sunday numbering.
type RecurrenceRule struct {
	Type       RecurrenceType `json:"type"`
	Interval   *int           `json:"interval,omitempty"`
	DaysOfWeek []int          `json:"daysOfWeek,omitempty"`
	Count      *int           `json:"count,omitempty"`
}

// Validate rejects rules the expander cannot run.
func (r RecurrenceRule) Validate() error {
	if !r.Type.Valid() {
		return NewError(ErrCodeInvalidRule, fmt.Sprintf("unknown recurrence type %q", r.Type))
	}
	if r.Interval != nil && *r.Interval < 1 {
		return NewError(ErrCodeInvalidRule, "interval must be a positive integer")
	}
	if r.Count != nil && *r.Count < 1 {
		return NewError(ErrCodeInvalidRule, "count must be a positive integer")
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return NewError(ErrCodeInvalidRule, fmt.Sprintf("weekday %d out of range 0..6", d))
		}
	}
	return nil
}

// Normalized drops the custom-only fields from non-custom rules.
func (r RecurrenceRule) Normalized() RecurrenceRule {
	out := r.Clone()
	if out.Type != RecurrenceCustom {
		out.Interval = nil
		out.DaysOfWeek = nil
	}
	if len(out.DaysOfWeek) == 0 {
		out.DaysOfWeek = nil
	}
	return out
}

// IntervalOrDefault returns the custom step in days, defaulting to 1.
func (r RecurrenceRule) IntervalOrDefault() int {
	if r.Interval == nil || *r.Interval < 1 {
		return 1
	}
	return *r.Interval
}

func (r RecurrenceRule) Clone() RecurrenceRule {
	out := r
	if r.Interval != nil {
		v := *r.Interval
		out.Interval = &v
	}
	if r.Count != nil {
		v := *r.Count
		out.Count = &v
	}
	if r.DaysOfWeek != nil {
		out.DaysOfWeek = append([]int(nil), r.DaysOfWeek...)
	}
	return out
}
