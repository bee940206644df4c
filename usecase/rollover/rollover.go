package rollover

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	appLogger "github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
)

// Command is the buffered payload of a rollover request.
type Command struct {
	Today time.Time `json:"today"`
}

type UseCase struct {
	store  repository.Store
	buffer usecase.CommandBuffer
	loc    *time.Location
	logger *zap.Logger
}

func New(store repository.Store, buffer usecase.CommandBuffer, loc *time.Location, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		store:  store,
		buffer: buffer,
		loc:    loc,
		logger: logger,
	}
}

// Today returns the current date in the configured location.
func (uc *UseCase) Today() time.Time {
	return calendar.Today(uc.loc)
}

// Run moves every stale task to today and returns how many were advanced.
// Running it again for the same day advances nothing.
func (uc *UseCase) Run(ctx context.Context, today time.Time) (int, error) {
	today = calendar.Normalize(today)

	var count int
	err := uc.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		stale, err := tx.Tasks().ListStale(ctx, today)
		if err != nil {
			return err
		}

		previous := make(map[string]string, len(stale))
		for _, t := range stale {
			if t.Date != nil {
				previous[t.ID] = calendar.Format(*t.Date)
			}
		}

		moved := Advance(stale, today)
		for i := range moved {
			if err := tx.Tasks().Update(ctx, &moved[i]); err != nil {
				return err
			}
			if err := tx.Events().Append(ctx, domain.NewEvent(moved[i].ID, domain.EventTaskRolledOver, map[string]string{
				"from": previous[moved[i].ID],
				"to":   calendar.Format(today),
			})); err != nil {
				return err
			}
		}
		count = len(moved)
		return nil
	})
	if err != nil {
		if usecase.TryBuffer(ctx, uc.buffer, uc.logger, err, usecase.CommandRollover, Command{Today: today}) {
			return 0, domain.ErrQueued
		}
		return 0, err
	}

	appLogger.WithRequestID(ctx, uc.logger).Info("rollover finished",
		zap.String("today", calendar.Format(today)),
		zap.Int("rolled_over", count))
	return count, nil
}
