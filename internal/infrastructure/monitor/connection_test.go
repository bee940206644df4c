package monitor

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func TestRefreshTracksStorage(t *testing.T) {
	storage := &fakePinger{}
	m := New("memory", storage, nil, nil, 0, nil)

	status := m.Refresh(context.Background())
	if !status.Storage || !m.IsOnline() {
		t.Fatalf("expected storage online, got %+v", status)
	}
	if status.RedisEnabled || !status.Healthy() {
		t.Fatalf("redis disabled must not affect health: %+v", status)
	}

	storage.err = errors.New("connection refused")
	status = m.Refresh(context.Background())
	if status.Storage || m.IsOnline() || status.Healthy() {
		t.Fatalf("expected storage offline, got %+v", status)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New("memory", &fakePinger{}, nil, nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
