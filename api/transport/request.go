package transport

import (
	"github.com/fastygo/planner/domain"
	taskUC "github.com/fastygo/planner/usecase/task"
)

type CreateTaskRequest struct {
	Title    string       `json:"title"`
	Date     NullableDate `json:"date"`
	Category string       `json:"category"`
}

type UpdateTaskRequest struct {
	Title     *string      `json:"title"`
	Completed *bool        `json:"completed"`
	Date      NullableDate `json:"date"`
	Category  *string      `json:"category"`
	IsLabel   *bool        `json:"isLabel"`
	Color     *string      `json:"color"`
	Notes     *string      `json:"notes"`
	Order     *int         `json:"order"`
}

// Patch converts the request into a use case patch.
func (r UpdateTaskRequest) Patch() taskUC.Patch {
	return taskUC.Patch{
		Title:     r.Title,
		Completed: r.Completed,
		DateSet:   r.Date.Set,
		Date:      r.Date.Value,
		Category:  r.Category,
		IsLabel:   r.IsLabel,
		Color:     r.Color,
		Notes:     r.Notes,
		Order:     r.Order,
	}
}

type MoveTaskRequest struct {
	TaskID      string       `json:"taskId"`
	NewDate     NullableDate `json:"newDate"`
	NewCategory string       `json:"newCategory"`
	NewIndex    int          `json:"newIndex"`
}

type RecurrenceRuleRequest struct {
	Type       string `json:"type"`
	Interval   *int   `json:"interval"`
	DaysOfWeek []int  `json:"daysOfWeek"`
	Count      *int   `json:"count"`
}

func (r RecurrenceRuleRequest) Rule() domain.RecurrenceRule {
	return domain.RecurrenceRule{
		Type:       domain.RecurrenceType(r.Type),
		Interval:   r.Interval,
		DaysOfWeek: r.DaysOfWeek,
		Count:      r.Count,
	}
}

type CreateSubtaskRequest struct {
	Title string `json:"title"`
}

type UpdateSubtaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type RolloverRequest struct {
	Today NullableDate `json:"today"`
}
