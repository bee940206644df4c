package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/planner/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type RecurrenceRuleResponse struct {
	Type       string `json:"type"`
	Interval   *int   `json:"interval,omitempty"`
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	Count      *int   `json:"count,omitempty"`
}

type SubtaskResponse struct {
	ID        string `json:"id"`
	TaskID    string `json:"taskId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

// TaskResponse renders a task with its date as YYYY-MM-DD, or null for someday tasks.
type TaskResponse struct {
	ID                string                  `json:"id"`
	Title             string                  `json:"title"`
	Completed         bool                    `json:"completed"`
	Date              *string                 `json:"date"`
	Category          string                  `json:"category"`
	IsLabel           bool                    `json:"isLabel"`
	Color             string                  `json:"color"`
	Notes             string                  `json:"notes"`
	Recurrence        *RecurrenceRuleResponse `json:"recurrence"`
	RecurringParentID *string                 `json:"recurringParentId"`
	Order             int                     `json:"order"`
	Subtasks          []SubtaskResponse       `json:"subtasks"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

type EventResponse struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"taskId"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type RolloverResponse struct {
	RolledOver int    `json:"rolled_over"`
	Today      string `json:"today"`
}

func NewSubtaskResponse(s domain.Subtask) SubtaskResponse {
	return SubtaskResponse{
		ID:        s.ID,
		TaskID:    s.TaskID,
		Title:     s.Title,
		Completed: s.Completed,
		Order:     s.Order,
	}
}

func NewTaskResponse(t domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Completed:         t.Completed,
		Date:              formatDate(t.Date),
		Category:          t.Category,
		IsLabel:           t.IsLabel,
		Color:             t.Color,
		Notes:             t.Notes,
		RecurringParentID: t.RecurringParentID,
		Order:             t.Order,
		Subtasks:          make([]SubtaskResponse, 0, len(t.Subtasks)),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.Recurrence != nil {
		resp.Recurrence = &RecurrenceRuleResponse{
			Type:       string(t.Recurrence.Type),
			Interval:   t.Recurrence.Interval,
			DaysOfWeek: t.Recurrence.DaysOfWeek,
			Count:      t.Recurrence.Count,
		}
	}
	for _, s := range t.Subtasks {
		resp.Subtasks = append(resp.Subtasks, NewSubtaskResponse(s))
	}
	return resp
}

func NewTaskListResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

func NewEventListResponse(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, EventResponse{
			ID:        ev.ID,
			TaskID:    ev.TaskID,
			Name:      ev.Name,
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out
}
