package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/config"
)

// RetryPolicy bounds how long startup waits for the database to accept connections.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// NewPool creates and validates a pgx connection pool, retrying while the
// database is still starting up.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, retry RetryPolicy, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retry.Attempts <= 0 {
		retry.Attempts = 1
	}

	pgxCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pgxCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pgxCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxConnLifetime > 0 {
		pgxCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	var lastErr error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		pool, err := connect(ctx, pgxCfg)
		if err == nil {
			logger.Info("connected to postgres", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
			return pool, nil
		}
		lastErr = err
		logger.Warn("postgres not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retry.Attempts),
			zap.Error(err))

		if attempt == retry.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Backoff):
		}
	}
	return nil, fmt.Errorf("postgres unavailable after %d attempts: %w", retry.Attempts, lastErr)
}

func connect(ctx context.Context, pgxCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
