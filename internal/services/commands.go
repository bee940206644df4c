package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/planner/usecase"
	"github.com/fastygo/planner/usecase/ordering"
	"github.com/fastygo/planner/usecase/recurrence"
	"github.com/fastygo/planner/usecase/rollover"
)

// RegisterCommands binds every bufferable command to its use case.
func RegisterCommands(d *usecase.Dispatcher, rec *recurrence.UseCase, ord *ordering.UseCase, roll *rollover.UseCase) {
	d.RegisterCommand(usecase.CommandSetRecurrence, func(ctx context.Context, payload json.RawMessage) error {
		cmd, err := usecase.Decode[recurrence.SetCommand](payload)
		if err != nil {
			return err
		}
		_, _, err = rec.Set(ctx, cmd.ParentID, cmd.Rule)
		return err
	})
	d.RegisterCommand(usecase.CommandClearRecurrence, func(ctx context.Context, payload json.RawMessage) error {
		cmd, err := usecase.Decode[recurrence.ClearCommand](payload)
		if err != nil {
			return err
		}
		return rec.Clear(ctx, cmd.ParentID)
	})
	d.RegisterCommand(usecase.CommandMoveTask, func(ctx context.Context, payload json.RawMessage) error {
		cmd, err := usecase.Decode[ordering.MoveCommand](payload)
		if err != nil {
			return err
		}
		_, err = ord.Move(ctx, cmd)
		return err
	})
	d.RegisterCommand(usecase.CommandRollover, func(ctx context.Context, payload json.RawMessage) error {
		cmd, err := usecase.Decode[rollover.Command](payload)
		if err != nil {
			return err
		}
		_, err = roll.Run(ctx, cmd.Today)
		return err
	})
}
