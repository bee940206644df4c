package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(0, nil)
	var order []string
	for _, name := range []string{"storage", "buffer", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	want := []string{"http", "buffer", "storage"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}

	if err := m.Shutdown(context.Background()); err != nil || len(order) != 3 {
		t.Fatalf("second shutdown must be a no-op, got %v (%v)", order, err)
	}
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(0, nil)
	boom := errors.New("boom")
	ran := false
	m.Register("first", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("second", func(context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ran {
		t.Fatal("hooks after a failure must still run")
	}
}
