package recurrence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	appLogger "github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
)

// SetCommand is the buffered payload of a set-recurrence request.
type SetCommand struct {
	ParentID string                `json:"parent_id"`
	Rule     domain.RecurrenceRule `json:"rule"`
}

// ClearCommand is the buffered payload of a clear-recurrence request.
type ClearCommand struct {
	ParentID string `json:"parent_id"`
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
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}
	return &UseCase{
		store:   store,
		buffer:  buffer,
		horizon: horizonWeeks,
		logger:  logger,
	}
}

// Set replaces the recurrence rule of parentID and regenerates its future
// instances. It returns the updated parent and the instances created.
func (uc *UseCase) Set(ctx context.Context, parentID string, rule domain.RecurrenceRule) (*domain.Task, []domain.Task, error) {
	if err := rule.Validate(); err != nil {
		return nil, nil, err
	}
	rule = rule.Normalized()

	var (
		parent  *domain.Task
		created []domain.Task
	)
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		parent, err = tx.Tasks().GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		if parent.IsInstance() {
			return domain.ErrInstanceRule
		}

		parent.Recurrence = &rule
		created, err = Apply(ctx, tx, *parent, parent.Recurrence, uc.horizon)
		if err != nil {
			return err
		}
		if err := tx.Tasks().Update(ctx, parent); err != nil {
			return err
		}
		return tx.Events().Append(ctx, domain.NewEvent(parent.ID, domain.EventRecurrenceSet, map[string]interface{}{
			"rule":    rule,
			"created": len(created),
		}))
	})
	if err != nil {
		if usecase.TryBuffer(ctx, uc.buffer, uc.logger, err, usecase.CommandSetRecurrence, SetCommand{ParentID: parentID, Rule: rule}) {
			return nil, nil, domain.ErrQueued
		}
		return nil, nil, err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("recurrence set",
		zap.String("task_id", parentID),
		zap.String("type", string(rule.Type)),
		zap.Int("created", len(created)))
	return parent, created, nil
}

// Clear removes the rule of parentID and deletes its incomplete instances.
// Completed instances are kept as history.
func (uc *UseCase) Clear(ctx context.Context, parentID string) error {
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		parent, err := tx.Tasks().GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		if _, err := Apply(ctx, tx, *parent, nil, uc.horizon); err != nil {
			return err
		}
		parent.Recurrence = nil
		if err := tx.Tasks().Update(ctx, parent); err != nil {
			return err
		}
		return tx.Events().Append(ctx, domain.NewEvent(parent.ID, domain.EventRecurrenceCleared, nil))
	})
	if err != nil {
		if usecase.TryBuffer(ctx, uc.buffer, uc.logger, err, usecase.CommandClearRecurrence, ClearCommand{ParentID: parentID}) {
			return domain.ErrQueued
		}
		return err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("recurrence cleared", zap.String("task_id", parentID))
	return nil
}

// Apply reconciles the instances of parent against rule inside tx and returns
// the instances it created.
func Apply(ctx context.Context, tx repository.Tx, parent domain.Task, rule *domain.RecurrenceRule, horizonWeeks int) ([]domain.Task, error) {
	existing, err := tx.Tasks().ListInstances(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	plan := Reconcile(parent, rule, existing, horizonWeeks)
	for _, stale := range plan.Delete {
		if err := tx.Tasks().Delete(ctx, stale.ID); err != nil {
			return nil, fmt.Errorf("delete instance %s: %w", stale.ID, err)
		}
	}

	created := make([]domain.Task, 0, len(plan.Create))
	for i := range plan.Create {
		inst, err := tx.Tasks().Create(ctx, &plan.Create[i])
		if err != nil {
			return nil, fmt.Errorf("create instance: %w", err)
		}
		created = append(created, *inst)
	}
	return created, nil
}
