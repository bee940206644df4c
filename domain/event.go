package domain

import (
	"encoding/json"
	"time"
)

const (
	EventTaskCreated       = "task.created"
	EventTaskDeleted       = "task.deleted"
	EventTaskMoved         = "task.moved"
	EventTaskRolledOver    = "task.rolled_over"
	EventRecurrenceSet     = "recurrence.set"
	EventRecurrenceCleared = "recurrence.cleared"
)

// Event records a change applied to a task, written in the same transaction as the change.
type Event struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent builds an event with a JSON payload. A payload that fails to
// marshal is dropped rather than failing the surrounding operation.
func NewEvent(taskID, name string, payload interface{}) Event {
	ev := Event{TaskID: taskID, Name: name, CreatedAt: time.Now().UTC()}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}
