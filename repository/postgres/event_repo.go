package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastygo/planner/domain"
)

type eventRepository struct {
	q querier
}

func (r *eventRepository) Append(ctx context.Context, event domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_events (id, task_id, name, payload, created_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	`

	var payload []byte
	if len(event.Payload) > 0 {
		payload = []byte(event.Payload)
	}

	if _, err := r.q.Exec(ctx, query,
		event.ID,
		event.TaskID,
		event.Name,
		payload,
		nullTime(event.CreatedAt),
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *eventRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]domain.Event, error) {
	const query = `
	SELECT id, task_id, name, payload, created_at
	FROM task_events
	WHERE task_id = $1
	ORDER BY created_at DESC, id
	LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, taskID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			ev      domain.Event
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.TaskID, &ev.Name, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			ev.Payload = append([]byte(nil), payload...)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
