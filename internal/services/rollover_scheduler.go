package services

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
	"github.com/fastygo/planner/repository"
)

const rolloverMarkerTTL = 36 * time.Hour

// RolloverRunner is satisfied by rollover.UseCase.
type RolloverRunner interface {
	Today() time.Time
	Run(ctx context.Context, today time.Time) (int, error)
}

// RolloverScheduler runs the daily rollover on a cron schedule. When a run
// marker is configured only one replica performs each day's run.
type RolloverScheduler struct {
	runner  RolloverRunner
	markers repository.RunMarkerRepository
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewRolloverScheduler builds the scheduler. spec is a six-field cron
// expression evaluated in loc. markers may be nil.
func NewRolloverScheduler(
	runner RolloverRunner,
	markers repository.RunMarkerRepository,
	loc *time.Location,
	spec string,
	timeout time.Duration,
	logger *zap.Logger,
) *RolloverScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverScheduler{
		runner:  runner,
		markers: markers,
		spec:    spec,
		timeout: timeout,
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		logger:  logger,
	}
}

// Start registers the job, performs a catch-up run for today and starts the
// cron loop.
func (s *RolloverScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.RunOnce(runCtx)
	}); err != nil {
		return err
	}

	catchUp, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, _ = s.RunOnce(catchUp)

	s.cron.Start()
	s.logger.Info("rollover scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *RolloverScheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("rollover scheduler stopped")
}

// RunOnce advances stale tasks for the current day unless another run
// already claimed it. It returns how many tasks moved.
func (s *RolloverScheduler) RunOnce(ctx context.Context) (int, error) {
	today := s.runner.Today()
	key := "rollover:" + calendar.Format(today)

	if s.markers != nil {
		claimed, err := s.markers.Claim(ctx, key, rolloverMarkerTTL)
		switch {
		case err != nil:
			s.logger.Warn("rollover marker unavailable, running anyway", zap.Error(err))
		case !claimed:
			s.logger.Debug("rollover already ran", zap.String("day", calendar.Format(today)))
			return 0, nil
		}
	}

	count, err := s.runner.Run(ctx, today)
	if err != nil {
		if errors.Is(err, domain.ErrQueued) {
			s.logger.Warn("rollover deferred to buffer", zap.String("day", calendar.Format(today)))
			return 0, err
		}
		s.logger.Error("rollover failed", zap.String("day", calendar.Format(today)), zap.Error(err))
		if s.markers != nil {
			if relErr := s.markers.Release(ctx, key); relErr != nil {
				s.logger.Warn("failed to release rollover marker", zap.Error(relErr))
			}
		}
		return 0, err
	}
	return count, nil
}
