package repository

import (
	"context"
	"time"

	"github.com/fastygo/planner/domain"
)

// TaskFilter narrows List. When both bounds are set only tasks dated within
// [From, To] plus all someday tasks are returned.
type TaskFilter struct {
	From *time.Time
	To   *time.Time
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// ListSlot returns non-label members of slot ordered by Order, skipping excludeID.
	ListSlot(ctx context.Context, slot domain.Slot, excludeID string) ([]domain.Task, error)
	// ListInstances returns every task generated from parentID.
	ListInstances(ctx context.Context, parentID string) ([]domain.Task, error)
	// ListStale returns incomplete, non-label, non-instance tasks dated before today.
	ListStale(ctx context.Context, today time.Time) ([]domain.Task, error)
	// NextOrder returns max(order)+1 over all tasks of slot, or 0 for an empty slot.
	NextOrder(ctx context.Context, slot domain.Slot) (int, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// Delete removes the task together with its subtasks and generated instances.
	Delete(ctx context.Context, id string) error
}
