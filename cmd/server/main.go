package main

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/learnpath/api/handler"
	"github.com/fastygo/learnpath/internal/config"
	"github.com/fastygo/learnpath/internal/infrastructure/llm"
	"github.com/fastygo/learnpath/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/learnpath/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/learnpath/internal/infrastructure/redis"
	"github.com/fastygo/learnpath/internal/metrics"
	"github.com/fastygo/learnpath/internal/middleware"
	"github.com/fastygo/learnpath/internal/router"
	"github.com/fastygo/learnpath/internal/services"
	"github.com/fastygo/learnpath/internal/services/lifecycle"
	"github.com/fastygo/learnpath/pkg/httpcontext"
	"github.com/fastygo/learnpath/pkg/logger"
	"github.com/fastygo/learnpath/repository"
	boltRepo "github.com/fastygo/learnpath/repository/bolt"
	"github.com/fastygo/learnpath/repository/postgres"
	redisRepo "github.com/fastygo/learnpath/repository/redis"
	"github.com/fastygo/learnpath/usecase/generate"
	taskUC "github.com/fastygo/learnpath/usecase/task"
)

const healthInterval = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(context.Background(), cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen()
	appCtx := manager.Context()

	mon := monitor.New(healthInterval, zapLogger)

	taskStore, err := openTaskStore(appCtx, cfg, manager, mon, zapLogger)
	if err != nil {
		zapLogger.Fatal("task store unavailable", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})
	mon.Add("redis", 2*time.Second, redisInfra.Ping(redisClient))
	candidateRepo := redisRepo.NewCandidateRepository(redisClient, cfg.Redis.CandidateTTL)

	generator, err := llm.NewGoogleAI(appCtx, cfg.Generation, zapLogger)
	if err != nil {
		zapLogger.Fatal("generator setup failed", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		zapLogger.Fatal("metrics setup failed", zap.Error(err))
	}

	sessions, err := taskUC.NewService(taskUC.Dependencies{
		Tasks:    taskStore,
		Recorder: recorder,
		Logger:   zapLogger,
	}, cfg.Sessions.CacheSize)
	if err != nil {
		zapLogger.Fatal("session cache setup failed", zap.Error(err))
	}
	generateUseCase := generate.New(generator, candidateRepo, sessions, recorder, zapLogger)

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	refresher, err := services.NewSessionRefresher(sessions, cfg.Sessions.RefreshInterval, zapLogger)
	if err != nil {
		zapLogger.Fatal("session refresher setup failed", zap.Error(err))
	}
	refresher.Start()
	manager.Register("session_refresher", func(ctx context.Context) error {
		refresher.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Generate: apiHandler.NewGenerateHandler(generateUseCase, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(sessions, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, sessions, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = apiHandler.NewMetricsHandler(registry)
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	manager.Wait()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

// openTaskStore connects the configured task store and registers its health check
// and shutdown hook.
func openTaskStore(
	ctx context.Context,
	cfg *config.Config,
	manager *lifecycle.Manager,
	mon *monitor.Monitor,
	logger *zap.Logger,
) (repository.TaskRepository, error) {
	if cfg.Database.Driver == config.DriverBolt {
		store, err := boltRepo.Open(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		manager.Register("bolt", func(context.Context) error {
			return store.Close()
		})
		mon.Add("store", time.Second, store.Ping)
		logger.Info("using embedded task store", zap.String("path", cfg.Bolt.Path))
		return store, nil
	}

	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		return nil, err
	}
	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	manager.Register("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})
	mon.Add("store", 2*time.Second, pool.Ping)
	return postgres.NewTaskRepository(pool), nil
}
