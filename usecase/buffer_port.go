package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
)

// Commands that may be deferred to the offline buffer and replayed later.
const (
	CommandMoveTask        = "tasks.move"
	CommandRollover        = "tasks.rollover"
	CommandSetRecurrence   = "recurrence.set"
	CommandClearRecurrence = "recurrence.clear"
)

// CommandBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type CommandBuffer interface {
	BufferCommand(ctx context.Context, name string, payload interface{}) error
}

type replayKey struct{}

// WithReplay marks ctx as belonging to a buffered command being replayed.
// Replays are never buffered again.
func WithReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, replayKey{}, true)
}

func IsReplay(ctx context.Context) bool {
	v, _ := ctx.Value(replayKey{}).(bool)
	return v
}

// TryBuffer stores the command when err is an infrastructure failure. It
// reports whether the command was accepted by the buffer.
func TryBuffer(ctx context.Context, buf CommandBuffer, logger *zap.Logger, err error, name string, payload interface{}) bool {
	if buf == nil || err == nil || domain.IsClassified(err) || IsReplay(ctx) {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	if bufErr := buf.BufferCommand(ctx, name, payload); bufErr != nil {
		logger.Error("failed to buffer command", zap.String("command", name), zap.Error(bufErr))
		return false
	}
	logger.Warn("command buffered", zap.String("command", name), zap.Error(err))
	return true
}
