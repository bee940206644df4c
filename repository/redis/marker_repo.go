package redis

import (
	"context"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/planner/repository"
)

type markerRepository struct {
	client *redislib.Client
	prefix string
}

// NewRunMarkerRepository creates a Redis-backed run marker. Claims use SET NX
// so exactly one replica wins per key until the TTL expires.
func NewRunMarkerRepository(client *redislib.Client, prefix string) repository.RunMarkerRepository {
	if prefix == "" {
		prefix = "planner:run:"
	}
	return &markerRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *markerRepository) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.client.SetNX(ctx, r.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (r *markerRepository) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *markerRepository) key(id string) string {
	return r.prefix + id
}
