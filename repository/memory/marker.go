package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/planner/repository"
)

// MarkerRepository is a single-process RunMarkerRepository used when Redis is disabled.
type MarkerRepository struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMarkerRepository() *MarkerRepository {
	return &MarkerRepository{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MarkerRepository) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.expires[key] = now.Add(ttl)
	return true, nil
}

func (m *MarkerRepository) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, key)
	return nil
}

var _ repository.RunMarkerRepository = (*MarkerRepository)(nil)
