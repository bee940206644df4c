package main

import (
	"context"
	"fmt"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/planner/api/handler"
	"github.com/fastygo/planner/internal/config"
	"github.com/fastygo/planner/internal/infrastructure/buffer"
	"github.com/fastygo/planner/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/planner/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/planner/internal/infrastructure/redis"
	"github.com/fastygo/planner/internal/middleware"
	"github.com/fastygo/planner/internal/router"
	"github.com/fastygo/planner/internal/services"
	"github.com/fastygo/planner/internal/services/lifecycle"
	"github.com/fastygo/planner/pkg/httpcontext"
	"github.com/fastygo/planner/pkg/logger"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/repository/memory"
	"github.com/fastygo/planner/repository/postgres"
	redisRepo "github.com/fastygo/planner/repository/redis"
	"github.com/fastygo/planner/repository/sqlite"
	"github.com/fastygo/planner/usecase"
	"github.com/fastygo/planner/usecase/ordering"
	"github.com/fastygo/planner/usecase/recurrence"
	"github.com/fastygo/planner/usecase/rollover"
	taskUC "github.com/fastygo/planner/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		zapLogger.Fatal("invalid timezone", zap.Error(err))
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	store, err := openStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	manager.Register("storage", func(ctx context.Context) error {
		return store.Close()
	})

	var (
		redisClient *redislib.Client
		markers     repository.RunMarkerRepository = memory.NewMarkerRepository()
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		markers = redisRepo.NewRunMarkerRepository(redisClient, cfg.Redis.KeyPrefix)
	}

	var bufferStore *buffer.Store
	if cfg.Storage.Driver != config.DriverMemory {
		bufferStore, err = buffer.Open(cfg.Buffer.Path)
		if err != nil {
			zapLogger.Fatal("failed to open buffer store", zap.Error(err))
		}
		manager.Register("buffer", func(ctx context.Context) error {
			return bufferStore.Close()
		})
	}

	mon := monitor.New(cfg.Storage.Driver, store, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	dispatcher := usecase.NewDispatcher()
	var commandBuffer usecase.CommandBuffer
	var bufferProcessor *services.BufferProcessor
	if bufferStore != nil {
		bufferProcessor = services.NewBufferProcessor(
			bufferStore,
			mon,
			dispatcher,
			zapLogger.Named("buffer"),
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  50,
				MaxRetries: cfg.Buffer.MaxRetry,
				Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			},
		)
		commandBuffer = services.NewBufferBridge(bufferProcessor)
	}

	horizon := cfg.Recurrence.HorizonWeeks
	taskUseCase := taskUC.New(store, horizon, zapLogger)
	recurrenceUseCase := recurrence.New(store, commandBuffer, horizon, zapLogger)
	orderingUseCase := ordering.New(store, commandBuffer, horizon, zapLogger)
	rolloverUseCase := rollover.New(store, commandBuffer, loc, zapLogger)

	services.RegisterCommands(dispatcher, recurrenceUseCase, orderingUseCase, rolloverUseCase)

	if bufferProcessor != nil {
		bufferProcessor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			bufferProcessor.Stop(ctx)
			return nil
		})
	}

	if cfg.Schedule.RolloverEnabled {
		scheduler := services.NewRolloverScheduler(
			rolloverUseCase,
			markers,
			loc,
			cfg.Schedule.RolloverSpec,
			time.Minute,
			zapLogger.Named("rollover"),
		)
		if err := scheduler.Start(appCtx); err != nil {
			zapLogger.Fatal("rollover scheduler failed", zap.Error(err))
		}
		manager.Register("rollover_scheduler", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Planning: apiHandler.NewPlanningHandler(orderingUseCase, recurrenceUseCase, rolloverUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	handler := router.New(handlers, authMiddleware,
		middleware.AccessLog(zapLogger.Named("http")),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	server := &fasthttp.Server{
		Handler:            handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		CloseOnShutdown:    true,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("auth", cfg.JWT.Secret != ""))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := pgInfra.NewPool(ctx, cfg.Database, pgInfra.RetryPolicy{
			Attempts: cfg.Storage.ConnectAttempts,
			Backoff:  cfg.Storage.ConnectBackoff,
		}, zapLogger)
		if err != nil {
			return nil, err
		}
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return postgres.NewStore(pool), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path, zapLogger)
		if err != nil {
			return nil, err
		}
		zapLogger.Info("opened sqlite database", zap.String("path", cfg.SQLite.Path))
		return sqlite.NewStore(db), nil
	case config.DriverMemory:
		zapLogger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
