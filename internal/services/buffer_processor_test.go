package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/internal/infrastructure/buffer"
	"github.com/fastygo/planner/usecase"
)

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

func newProcessor(t *testing.T, d *usecase.Dispatcher, online bool) (*BufferProcessor, *buffer.Store) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"))
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewBufferProcessor(store, staticHealth(online), d, nil, ProcessorConfig{MaxRetries: 2}), store
}

func TestDrainReplaysBufferedCommands(t *testing.T) {
	d := usecase.NewDispatcher()
	var replayed []string
	d.RegisterCommand(usecase.CommandMoveTask, func(ctx context.Context, payload json.RawMessage) error {
		if !usecase.IsReplay(ctx) {
			t.Error("replay context not marked")
		}
		var body map[string]string
		if err := json.Unmarshal(payload, &body); err != nil {
			return err
		}
		replayed = append(replayed, body["task_id"])
		return nil
	})

	bp, store := newProcessor(t, d, true)
	bridge := NewBufferBridge(bp)
	for _, id := range []string{"a", "b"} {
		if err := bridge.BufferCommand(context.Background(), usecase.CommandMoveTask, map[string]string{"task_id": id}); err != nil {
			t.Fatalf("buffer: %v", err)
		}
	}

	if err := bp.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(replayed) != 2 {
		t.Fatalf("expected 2 replays, got %v", replayed)
	}
	if st, _ := store.Stats(); st.Pending != 0 {
		t.Fatalf("expected empty buffer, got %+v", st)
	}
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	d := usecase.NewDispatcher()
	called := false
	d.RegisterCommand(usecase.CommandRollover, func(context.Context, json.RawMessage) error {
		called = true
		return nil
	})
	bp, store := newProcessor(t, d, false)
	_ = NewBufferBridge(bp).BufferCommand(context.Background(), usecase.CommandRollover, map[string]string{"today": "2024-03-10"})

	if err := bp.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if called {
		t.Fatal("handler must not run while offline")
	}
	if st, _ := store.Stats(); st.Pending != 1 {
		t.Fatalf("expected item kept, got %+v", st)
	}
}

func TestDrainDeadLettersDomainFailures(t *testing.T) {
	d := usecase.NewDispatcher()
	d.RegisterCommand(usecase.CommandSetRecurrence, func(context.Context, json.RawMessage) error {
		return domain.ErrTaskNotFound
	})
	d.RegisterCommand(usecase.CommandMoveTask, func(context.Context, json.RawMessage) error {
		return errors.New("connection reset")
	})
	bp, store := newProcessor(t, d, true)
	bridge := NewBufferBridge(bp)
	_ = bridge.BufferCommand(context.Background(), usecase.CommandSetRecurrence, map[string]string{"parent_id": "gone"})
	_ = bridge.BufferCommand(context.Background(), usecase.CommandMoveTask, map[string]string{"task_id": "x"})

	_ = bp.Drain(context.Background())
	st, _ := store.Stats()
	if st.Dead != 1 || st.Pending != 1 {
		t.Fatalf("after first drain: %+v", st)
	}

	_ = bp.Drain(context.Background())
	st, _ = store.Stats()
	if st.Dead != 2 || st.Pending != 0 {
		t.Fatalf("after second drain: %+v", st)
	}
}
