package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/internal/infrastructure/buffer"
	"github.com/fastygo/planner/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays buffered commands once the task store is back.
type BufferProcessor struct {
	store      *buffer.Store
	monitor    ConnectionHealth
	dispatcher *usecase.Dispatcher
	logger     *zap.Logger
	cron       *cron.Cron
	cfg        ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	dispatcher *usecase.Dispatcher,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:      store,
		monitor:    monitor,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		cron:       cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", func() {
		bp.Cleanup(time.Now().UTC())
	})

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Strings("commands", bp.dispatcher.Commands()))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch of buffered commands in priority order. Commands
// rejected by the domain are dead-lettered at once; infrastructure failures
// are retried up to MaxRetries.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Batch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := bp.dispatcher.ExecuteCommand(ctx, item.Command, item.Payload)
		if err == nil {
			if err := bp.store.Ack(item); err != nil {
				bp.logger.Warn("failed to ack buffer item", zap.String("item_id", item.ID), zap.Error(err))
			}
			bp.logger.Info("buffered command replayed", zap.String("item_id", item.ID), zap.String("command", item.Command))
			continue
		}

		maxRetries := bp.cfg.MaxRetries
		if domain.IsClassified(err) {
			maxRetries = 1
		}
		dead, retryErr := bp.store.Retry(item, err, maxRetries)
		if retryErr != nil {
			bp.logger.Error("failed to requeue buffer item", zap.String("item_id", item.ID), zap.Error(retryErr))
			continue
		}
		if dead {
			bp.logger.Warn("buffer item dead-lettered",
				zap.String("item_id", item.ID),
				zap.String("command", item.Command),
				zap.Error(err))
			continue
		}
		bp.logger.Warn("buffer item replay failed",
			zap.String("item_id", item.ID),
			zap.String("command", item.Command),
			zap.Int("retries", item.Retries+1),
			zap.Error(err))
	}
	return nil
}

// Enqueue persists an item for later replay.
func (bp *BufferProcessor) Enqueue(item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	return bp.store.Enqueue(item)
}

// Cleanup drops buffered items older than the retention window.
func (bp *BufferProcessor) Cleanup(now time.Time) {
	if bp == nil || bp.store == nil {
		return
	}
	removed, err := bp.store.Cleanup(now.Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Info("expired buffer items removed", zap.Int("count", removed))
	}
}

// Stats returns the pending and dead-letter counts.
func (bp *BufferProcessor) Stats() buffer.Stats {
	if bp == nil || bp.store == nil {
		return buffer.Stats{}
	}
	stats, err := bp.store.Stats()
	if err != nil {
		return buffer.Stats{}
	}
	return stats
}
