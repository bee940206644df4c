package ordering

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	appLogger "github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
	"github.com/fastygo/planner/usecase/recurrence"
)

// MoveCommand places a task into a slot at a given index. A nil NewDate moves
// the task to the someday slot.
type MoveCommand struct {
	TaskID      string     `json:"task_id"`
	NewDate     *time.Time `json:"new_date,omitempty"`
	NewCategory string     `json:"new_category"`
	NewIndex    int        `json:"new_index"`
}

type UseCase struct {
	store   repository.Store
	buffer  usecase.CommandBuffer
	horizon int
	logger  *zap.Logger
}

func New(store repository.Store, buffer usecase.CommandBuffer, horizonWeeks int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:   store,
		buffer:  buffer,
		horizon: horizonWeeks,
		logger:  logger,
	}
}

// Move relocates the task and renumbers the destination slot. The result
// holds the moved task followed by every other member of the slot. When a
// recurring parent changes date its instances are regenerated from the new
// anchor and appended to the result.
func (uc *UseCase) Move(ctx context.Context, cmd MoveCommand) ([]domain.Task, error) {
	cmd.NewCategory = strings.TrimSpace(cmd.NewCategory)
	if cmd.TaskID == "" || cmd.NewCategory == "" {
		return nil, domain.ErrInvalidPayload
	}

	var affected []domain.Task
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		dateChanged := !domain.SameDate(task.Date, cmd.NewDate)

		// Reconcile a moved recurring parent first: instances it drops may sit
		// in the destination slot and must not take part in the renumbering.
		var created []domain.Task
		if dateChanged && task.Recurrence != nil && !task.IsInstance() {
			anchored := task.Clone()
			anchored.Date = cmd.NewDate
			created, err = recurrence.Apply(ctx, tx, anchored, anchored.Recurrence, uc.horizon)
			if err != nil {
				return err
			}
		}

		slot := domain.Slot{Date: cmd.NewDate, Category: cmd.NewCategory}
		others, err := tx.Tasks().ListSlot(ctx, slot, task.ID)
		if err != nil {
			return err
		}

		affected = Place(*task, slot, others, cmd.NewIndex)
		for i := range affected {
			if err := tx.Tasks().Update(ctx, &affected[i]); err != nil {
				return err
			}
		}
		affected = append(affected, created...)

		moved := affected[0]
		return tx.Events().Append(ctx, domain.NewEvent(moved.ID, domain.EventTaskMoved, map[string]interface{}{
			"date":     formatDate(cmd.NewDate),
			"category": cmd.NewCategory,
			"index":    moved.Order,
		}))
	})
	if err != nil {
		if usecase.TryBuffer(ctx, uc.buffer, uc.logger, err, usecase.CommandMoveTask, cmd) {
			return nil, domain.ErrQueued
		}
		return nil, err
	}

	appLogger.WithRequestID(ctx, uc.logger).Debug("task moved",
		zap.String("task_id", cmd.TaskID),
		zap.String("category", cmd.NewCategory),
		zap.Int("affected", len(affected)))
	return affected, nil
}

func formatDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return calendar.Format(*d)
}
