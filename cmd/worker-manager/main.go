// cmd/worker-manager/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"provider-funnel/internal/common/camunda"
	"provider-funnel/internal/common/config"
	"provider-funnel/internal/common/database"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/observability"
	"provider-funnel/internal/funnel"
	"provider-funnel/internal/funnel/remote"
	"provider-funnel/internal/funnel/store"
	"provider-funnel/internal/providers"
	"provider-funnel/internal/server"

	lf "provider-funnel/internal/workers/funnel/load-funnel"
	rf "provider-funnel/internal/workers/funnel/reset-funnel"
	sp "provider-funnel/internal/workers/funnel/score-providers"
	sa "provider-funnel/internal/workers/funnel/submit-answer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds the connections the selected config needs. Unused ones stay nil.
type backends struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
	lite  *database.SQLiteClient
}

func (b *backends) ping(ctx context.Context) error {
	var errs []error
	if b.pg != nil {
		errs = append(errs, b.pg.Ping(ctx))
	}
	if b.redis != nil {
		errs = append(errs, b.redis.Ping(ctx))
	}
	if b.es != nil {
		errs = append(errs, b.es.Ping(ctx))
	}
	if b.lite != nil {
		errs = append(errs, b.lite.Ping(ctx))
	}
	return stderrors.Join(errs...)
}

func (b *backends) close() {
	if b.pg != nil {
		b.pg.Close()
	}
	if b.redis != nil {
		b.redis.Close()
	}
	if b.lite != nil {
		b.lite.Close()
	}
}

func connect(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Funnel.SyncEnabled || cfg.Providers.Source == "postgres" {
		err := retryWithBackoff(func() error {
			var err error
			b.pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return b.pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return b, err
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Funnel.SlotBackend == "redis" || cfg.Providers.CacheTTL > 0 {
		err := retryWithBackoff(func() error {
			var err error
			b.redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return b.redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return b, err
		}
		zapLog.Info("Redis connected successfully")
	}

	if cfg.Providers.Source == "elasticsearch" {
		err := retryWithBackoff(func() error {
			var err error
			b.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return b.es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return b, err
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Funnel.SlotBackend == "sqlite" {
		var err error
		if b.lite, err = database.NewSQLite(cfg.Database.SQLite); err != nil {
			return b, err
		}
	}

	return b, nil
}

func newSlot(ctx context.Context, cfg *config.Config, b *backends) (store.Slot, error) {
	switch cfg.Funnel.SlotBackend {
	case "redis":
		return store.NewRedisSlot(b.redis.GetClient(), time.Duration(cfg.Funnel.SlotTTL)*time.Second), nil
	case "sqlite":
		return store.NewSQLiteSlot(ctx, b.lite.DB)
	default:
		return store.NewMemorySlot(), nil
	}
}

func newProviderSource(cfg *config.Config, b *backends, log logger.Logger) (providers.Source, error) {
	var src providers.Source
	switch cfg.Providers.Source {
	case "elasticsearch":
		src = providers.NewElasticsearchSource(b.es, 0)
	case "file":
		fs, err := providers.NewFileSource(cfg.Providers.File)
		if err != nil {
			return nil, err
		}
		src = fs
	default:
		src = providers.NewPostgresSource(b.pg)
	}
	if cfg.Providers.CacheTTL > 0 {
		src = providers.NewCachedSource(src, b.redis, time.Duration(cfg.Providers.CacheTTL)*time.Second, log)
	}
	return src, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name, observability.WithJaegerEndpoint(cfg.Tracing.JaegerEndpoint))
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	b, err := connect(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("backend connection failed after retries", zap.Error(err))
	}
	defer b.close()

	slot, err := newSlot(ctx, cfg, b)
	if err != nil {
		zapLog.Fatal("answer slot init failed", zap.Error(err))
	}
	src, err := newProviderSource(cfg, b, log)
	if err != nil {
		zapLog.Fatal("provider source init failed", zap.Error(err))
	}

	svc := &funnel.Service{
		Store:     store.New(slot, log),
		Providers: src,
		Obs:       obs,
		Logger:    log,
	}

	var queue *remote.Queue
	if cfg.Funnel.SyncEnabled {
		persister := remote.NewPostgresPersister(b.pg)
		queue = remote.NewQueue(persister, log, remote.QueueOptions{
			Size:    cfg.Funnel.SyncQueueSize,
			Timeout: config.GetDuration(cfg.Funnel.SyncTimeout),
		})
		queue.Start(ctx)
		svc.Sync = queue
		svc.Restore = persister
		zapLog.Info("Remote answer sync enabled", zap.Int("queueSize", cfg.Funnel.SyncQueueSize))
	}

	// --- Zeebe job workers ---
	var zeebe *camunda.Client
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		// The service is shared with the workers, so the hook is set before any job runs.
		if name := cfg.Camunda.CompletionMessage; name != "" {
			publisher := camunda.NewPublisher(zeebe, config.GetDuration(cfg.Camunda.MessageTTL), log)
			svc.OnCompleted(func(msg funnel.CompletionMessage) {
				go publisher.Publish(context.Background(), name, msg.SessionID, msg)
			})
			zapLog.Info("Funnel completion messages enabled", zap.String("message", name))
		}

		client := zeebe.GetClient()

		wcfg := config.GetWorkerConfig(cfg, lf.TaskType)
		loadHandler := lf.NewHandler(&lf.Config{Timeout: config.GetDuration(wcfg.Timeout)}, svc, log)
		workers = append(workers, camunda.StartWorker(client, lf.TaskType, wcfg, loadHandler.Handle, log))

		wcfg = config.GetWorkerConfig(cfg, sa.TaskType)
		submitHandler := sa.NewHandler(&sa.Config{Timeout: config.GetDuration(wcfg.Timeout)}, svc, log)
		workers = append(workers, camunda.StartWorker(client, sa.TaskType, wcfg, submitHandler.Handle, log))

		wcfg = config.GetWorkerConfig(cfg, rf.TaskType)
		resetHandler := rf.NewHandler(&rf.Config{Timeout: config.GetDuration(wcfg.Timeout)}, svc, log)
		workers = append(workers, camunda.StartWorker(client, rf.TaskType, wcfg, resetHandler.Handle, log))

		wcfg = config.GetWorkerConfig(cfg, sp.TaskType)
		scoreCfg := sp.LoadConfig()
		scoreCfg.Timeout = config.GetDuration(wcfg.Timeout)
		scoreHandler := sp.NewHandler(scoreCfg, svc, log)
		workers = append(workers, camunda.StartWorker(client, sp.TaskType, wcfg, scoreHandler.Handle, log))

		zapLog.Info("Funnel workers registered", zap.Int("count", len(workers)))
	}

	ready := func(ctx context.Context) error {
		err := b.ping(ctx)
		if zeebe != nil {
			err = stderrors.Join(err, zeebe.HealthCheck(ctx))
		}
		return err
	}

	// --- HTTP API, health & metrics ---
	handler, err := server.New(server.Config{
		Service:      svc,
		JWTSecret:    cfg.HTTP.JWTSecret,
		SessionCache: cfg.HTTP.SessionCache,
		Ready:        ready,
		Logger:       log,
	})
	if err != nil {
		zapLog.Fatal("http handler init failed", zap.Error(err))
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if queue != nil {
		queue.Stop()
	}

	zapLog.Info("Worker manager stopped gracefully")
}
