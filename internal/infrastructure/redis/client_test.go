package redis

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/planner/internal/config"
)

func TestOptions(t *testing.T) {
	opts, err := Options(config.RedisConfig{
		URL:      "redis://cache.internal:6380/2",
		Password: "secret",
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected connection options %+v", opts)
	}
	if opts.DialTimeout != time.Second || opts.ReadTimeout != time.Second || opts.WriteTimeout != time.Second {
		t.Fatalf("timeouts not applied: dial=%v read=%v write=%v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), config.RedisConfig{URL: "http://not-redis"}); err == nil {
		t.Fatal("expected error for non-redis URL")
	}
}
