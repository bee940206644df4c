package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestIDAddsContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "owner")
	WithRequestID(ctx, base).Info("moved")
	WithRequestID(context.Background(), base).Info("anonymous")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["user_id"] != "owner" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("empty context must add no fields, got %v", entries[1].ContextMap())
	}
}
