package repository

import (
	"context"

	"github.com/fastygo/planner/domain"
)

type SubtaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error)
	// Create appends the subtask after the last one of its task.
	Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error)
	Update(ctx context.Context, subtask *domain.Subtask) error
	Delete(ctx context.Context, id string) error
}
