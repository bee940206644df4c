package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/fastygo/planner/domain"
)

// CommandHandler replays one buffered command from its JSON payload.
type CommandHandler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher routes buffered commands back to the use case that issued them.
type Dispatcher struct {
	handlers map[string]CommandHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]CommandHandler)}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

// Commands lists the registered command names.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteCommand runs the handler registered for name. The context is marked
// as a replay so a failing handler is not buffered a second time.
func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload json.RawMessage) error {
	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("command handler %s not registered", name))
	}
	return handler(WithReplay(ctx), payload)
}

// Decode unmarshals a command payload. Malformed payloads are classified as
// invalid so they are never retried.
func Decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, domain.WrapError(domain.ErrCodeInvalid, "decode command payload", err)
	}
	return v, nil
}
