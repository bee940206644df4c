package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Priorities. Lower values drain first.
const (
	PriorityHigh   = 1
	PriorityNormal = 3
	PriorityLow    = 5
)

// Item is a command deferred while the task store is unreachable.
type Item struct {
	ID        string          `json:"id"`
	Command   string          `json:"command"`
	Payload   json.RawMessage `json:"payload"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < PriorityHigh || i.Priority > PriorityLow {
		i.Priority = PriorityNormal
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now().UTC()
	}
}

// Stats summarises the buffer for the health endpoint.
type Stats struct {
	Pending int `json:"pending"`
	Dead    int `json:"dead"`
}
