package repository

import (
	"context"

	"github.com/fastygo/planner/domain"
)

type EventRepository interface {
	Append(ctx context.Context, event domain.Event) error
	ListByTask(ctx context.Context, taskID string, limit int) ([]domain.Event, error)
}
