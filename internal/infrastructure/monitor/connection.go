package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/infrastructure/buffer"
)

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	driver  string
	storage Pinger
	redis   *redislib.Client
	buffer  *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor. redis and buf may be nil when those components are disabled.
func New(driver string, storage Pinger, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		driver:   driver,
		storage:  storage,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the task store answered the last ping. The buffer
// processor only drains while this is true.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh pings every dependency once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	bufferOK, stats := m.checkBuffer()
	status := Status{
		Driver:       m.driver,
		Storage:      m.checkStorage(ctx),
		RedisEnabled: m.redis != nil,
		Redis:        m.checkRedis(ctx),
		Buffer:       bufferOK,
		BufferStats:  stats,
		LastCheck:    time.Now().UTC(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Storage != status.Storage {
		if status.Storage {
			m.logger.Info("storage back online", zap.String("driver", m.driver))
		} else {
			m.logger.Warn("storage offline", zap.String("driver", m.driver))
		}
	}
	return status
}

func (m *Monitor) checkStorage(ctx context.Context) bool {
	if m.storage == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return m.storage.Ping(ctx) == nil
}

func (m *Monitor) checkRedis(ctx context.Context) bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkBuffer() (bool, buffer.Stats) {
	if m.buffer == nil {
		return false, buffer.Stats{}
	}
	stats, err := m.buffer.Stats()
	if err != nil {
		m.logger.Warn("buffer stats check failed", zap.Error(err))
		return false, stats
	}
	return true, stats
}
