package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/planner/internal/infrastructure/buffer"
	"github.com/fastygo/planner/usecase"
)

// commandPriority orders replay: structure-changing commands before moves,
// and rollover last so it sees every replayed date.
var commandPriority = map[string]int{
	usecase.CommandSetRecurrence:   buffer.PriorityHigh,
	usecase.CommandClearRecurrence: buffer.PriorityHigh,
	usecase.CommandMoveTask:        buffer.PriorityNormal,
	usecase.CommandRollover:        buffer.PriorityLow,
}

// BufferBridge adapts the processor to the use case CommandBuffer port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferCommand(_ context.Context, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	priority, ok := commandPriority[name]
	if !ok {
		priority = buffer.PriorityNormal
	}
	return b.processor.Enqueue(buffer.Item{
		Command:  name,
		Payload:  data,
		Priority: priority,
	})
}

var _ usecase.CommandBuffer = (*BufferBridge)(nil)
