package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
)

type pingCommand struct {
	Value string `json:"value"`
}

func TestDispatcherReplaysWithMarkedContext(t *testing.T) {
	d := NewDispatcher()
	var got pingCommand
	var replay bool
	d.RegisterCommand("ping", func(ctx context.Context, payload json.RawMessage) error {
		cmd, err := Decode[pingCommand](payload)
		if err != nil {
			return err
		}
		got = cmd
		replay = IsReplay(ctx)
		return nil
	})

	if err := d.ExecuteCommand(context.Background(), "ping", json.RawMessage(`{"value":"pong"}`)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Value != "pong" || !replay {
		t.Fatalf("unexpected dispatch: value=%q replay=%v", got.Value, replay)
	}
	if names := d.Commands(); len(names) != 1 || names[0] != "ping" {
		t.Fatalf("unexpected commands %v", names)
	}
}

func TestDispatcherClassifiesBadInput(t *testing.T) {
	d := NewDispatcher()
	d.RegisterCommand("ping", func(ctx context.Context, payload json.RawMessage) error {
		_, err := Decode[pingCommand](payload)
		return err
	})

	err := d.ExecuteCommand(context.Background(), "unknown", nil)
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("unknown command must be invalid, got %v", err)
	}
	err = d.ExecuteCommand(context.Background(), "ping", json.RawMessage(`{"value":`))
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("malformed payload must be invalid, got %v", err)
	}
}

type countingBuffer struct{ calls int }

func (b *countingBuffer) BufferCommand(context.Context, string, interface{}) error {
	b.calls++
	return nil
}

func TestTryBufferSkipsClassifiedAndReplayed(t *testing.T) {
	buf := &countingBuffer{}
	infra := context.DeadlineExceeded
	ctx := context.Background()

	if TryBuffer(ctx, buf, zap.NewNop(), domain.ErrTaskNotFound, "x", nil) {
		t.Fatal("classified error must not be buffered")
	}
	if TryBuffer(WithReplay(ctx), buf, zap.NewNop(), infra, "x", nil) {
		t.Fatal("replayed command must not be buffered")
	}
	if !TryBuffer(ctx, buf, zap.NewNop(), infra, "x", nil) {
		t.Fatal("infrastructure error must be buffered")
	}
	if buf.calls != 1 {
		t.Fatalf("expected 1 buffer call, got %d", buf.calls)
	}
}
