package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	appLogger "github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase/recurrence"
)

// Patch carries a partial task update. DateSet distinguishes "move to
// someday" (DateSet with a nil Date) from "leave the date alone".
type Patch struct {
	Title     *string
	Completed *bool
	DateSet   bool
	Date      *time.Time
	Category  *string
	IsLabel   *bool
	Color     *string
	Notes     *string
	Order     *int
}

// SubtaskPatch carries a partial subtask update.
type SubtaskPatch struct {
	Title     *string
	Completed *bool
}

type UseCase struct {
	store   repository.Store
	horizon int
	logger  *zap.Logger
}

func New(store repository.Store, horizonWeeks int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:   store,
		horizon: horizonWeeks,
		logger:  logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		tasks, err = tx.Tasks().List(ctx, filter)
		return err
	})
	return tasks, err
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		task, err = tx.Tasks().GetByID(ctx, id)
		return err
	})
	return task, err
}

// CreateTask appends a new task at the end of its slot.
func (uc *UseCase) CreateTask(ctx context.Context, title string, date *time.Time, category string) (*domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidPayload
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = domain.DefaultCategory
	}
	task := &domain.Task{
		Title:    title,
		Date:     date,
		Category: category,
		Color:    domain.DefaultColor,
	}

	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.Tasks().NextOrder(ctx, task.Slot())
		if err != nil {
			return err
		}
		task.Order = order
		if _, err := tx.Tasks().Create(ctx, task); err != nil {
			return err
		}
		return tx.Events().Append(ctx, domain.NewEvent(task.ID, domain.EventTaskCreated, nil))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies patch. A recurring parent whose date changes has its
// instances regenerated from the new date.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch Patch) (*domain.Task, error) {
	var task *domain.Task
	var regenerated int
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		task, err = tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}

		dateChanged := patch.DateSet && !domain.SameDate(task.Date, patch.Date)
		applyPatch(task, patch)

		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		if dateChanged && task.Recurrence != nil && !task.IsInstance() {
			created, err := recurrence.Apply(ctx, tx, *task, task.Recurrence, uc.horizon)
			if err != nil {
				return err
			}
			regenerated = len(created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if regenerated > 0 {
		appLogger.WithRequestID(ctx, uc.logger).Info("recurring instances regenerated",
			zap.String("task_id", id),
			zap.Int("created", regenerated))
	}
	return task, nil
}

func applyPatch(task *domain.Task, patch Patch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.DateSet {
		task.Date = patch.Date
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.IsLabel != nil {
		task.IsLabel = *patch.IsLabel
	}
	if patch.Color != nil {
		task.Color = *patch.Color
	}
	if patch.Notes != nil {
		task.Notes = *patch.Notes
	}
	if patch.Order != nil {
		task.Order = *patch.Order
	}
}

// DeleteTask removes the task, its subtasks and every instance generated from it.
func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	return uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Events().Append(ctx, domain.NewEvent(id, domain.EventTaskDeleted, nil))
	})
}

// DeleteTaskAndFuture removes the task and every sibling instance of the same
// recurring family dated on or after it.
func (uc *UseCase) DeleteTaskAndFuture(ctx context.Context, id string) error {
	var removed int
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}

		parentID := task.ID
		if task.RecurringParentID != nil {
			parentID = *task.RecurringParentID
		}

		if task.Date != nil {
			family, err := tx.Tasks().ListInstances(ctx, parentID)
			if err != nil {
				return err
			}
			for _, sibling := range family {
				if sibling.ID == task.ID || sibling.Date == nil || sibling.Date.Before(*task.Date) {
					continue
				}
				if err := tx.Tasks().Delete(ctx, sibling.ID); err != nil {
					return err
				}
				removed++
			}
		}

		if err := tx.Tasks().Delete(ctx, task.ID); err != nil {
			return err
		}
		return tx.Events().Append(ctx, domain.NewEvent(task.ID, domain.EventTaskDeleted, map[string]int{
			"future_removed": removed,
		}))
	})
	if err != nil {
		return err
	}
	appLogger.WithRequestID(ctx, uc.logger).Info("task and future instances deleted",
		zap.String("task_id", id),
		zap.Int("future_removed", removed))
	return nil
}

func (uc *UseCase) AddSubtask(ctx context.Context, taskID, title string) (*domain.Subtask, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidPayload
	}
	sub := &domain.Subtask{TaskID: taskID, Title: title}
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Tasks().GetByID(ctx, taskID); err != nil {
			return err
		}
		_, err := tx.Subtasks().Create(ctx, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *UseCase) UpdateSubtask(ctx context.Context, id string, patch SubtaskPatch) (*domain.Subtask, error) {
	var sub *domain.Subtask
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		sub, err = tx.Subtasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			sub.Title = *patch.Title
		}
		if patch.Completed != nil {
			sub.Completed = *patch.Completed
		}
		return tx.Subtasks().Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, id string) error {
	return uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Subtasks().Delete(ctx, id)
	})
}

// Events returns the most recent activity of a task, newest first.
func (uc *UseCase) Events(ctx context.Context, taskID string, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var events []domain.Event
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		events, err = tx.Events().ListByTask(ctx, taskID, limit)
		return err
	})
	return events, err
}
