package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/config"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/event"
	handler "github.com/Cleyssonfreitas/coderhouse-aula39/internal/handler/http"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/realtime"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository/filesystem"
	mongorepo "github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository/mongo"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository/postgres"
	redisrepo "github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository/redis"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	"github.com/Cleyssonfreitas/coderhouse-aula39/migrations"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/health"
	pkgkafka "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/kafka"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/middleware"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backend        *Backend
	producer       *pkgkafka.Producer
	hub            *realtime.Hub
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// Backend is the persistence layer selected by PERSIST_MODE.
type Backend struct {
	Name     string
	Products repository.ProductRepository
	Carts    repository.CartRepository

	// Check is the readiness probe for the underlying store.
	Check health.Checker
	Close func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	be, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	healthHandler := health.NewHandler(ServiceName)
	healthHandler.Register(be.Name, be.Check)

	// Kafka is optional: with it disabled domain events are discarded.
	var producer *pkgkafka.Producer
	events := event.NewProducer(nil, logger)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
			logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		healthHandler.RegisterOptional("kafka", producer.Ping)
		events = event.NewProducer(producer, logger)
	}

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, logger)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       ServiceName,
		Products:          service.NewProductService(be.Products, events, logger),
		Carts:             service.NewCartService(be.Carts, events, logger),
		Chat:              service.NewChatService(hub, logger),
		Hub:               hub,
		Health:            healthHandler,
		CORS:              middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		Logger:            logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		backend:        be,
		producer:       producer,
		hub:            hub,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// OpenBackend connects the persistence backend chosen by cfg. The caller must
// call Close on the result.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend() {
	case config.PersistFilesystem:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		products := filesystem.NewProductRepository(cfg.DataDir, logger)
		logger.Info("using filesystem persistence", slog.String("data_dir", cfg.DataDir))
		return &Backend{
			Name:     config.PersistFilesystem,
			Products: products,
			Carts:    filesystem.NewCartRepository(cfg.DataDir, logger),
			Check:    products.Ping,
			Close:    func(context.Context) error { return nil },
		}, nil

	case config.PersistRedis:
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		return &Backend{
			Name:     config.PersistRedis,
			Products: redisrepo.NewProductRepository(client),
			Carts:    redisrepo.NewCartRepository(client),
			Check:    func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close:    func(context.Context) error { return client.Close() },
		}, nil

	case config.PersistPostgres:
		pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
			Host:            cfg.PostgresHost,
			Port:            cfg.PostgresPort,
			User:            cfg.PostgresUser,
			Password:        cfg.PostgresPass,
			DBName:          cfg.PostgresDB,
			SSLMode:         cfg.PostgresSSL,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
			MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			logger.Warn("register pool metrics", slog.String("error", err.Error()))
		}

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		return &Backend{
			Name:     config.PersistPostgres,
			Products: postgres.NewProductRepository(pool),
			Carts:    postgres.NewCartRepository(pool),
			Check:    pool.Ping,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		client, err := database.NewMongoClient(ctx, database.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			ConnectTimeout: time.Duration(cfg.MongoConnectTimeout) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))
		return &Backend{
			Name:     config.PersistMongoDB,
			Products: mongorepo.NewProductRepository(db),
			Carts:    mongorepo.NewCartRepository(db),
			Check:    func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			Close:    client.Disconnect,
		}, nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("persist_mode", a.backend.Name),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Realtime hub (hijacked connections are not drained by the server)
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka producer
// 5. Persistence backend
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Disconnect WebSocket clients.
	a.hub.Close()

	// 3. Flush pending spans.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 5. Close the persistence backend.
	backendCtx, backendCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer backendCancel()
	if err := a.backend.Close(backendCtx); err != nil {
		a.logger.Error("backend close error",
			slog.String("persist_mode", a.backend.Name),
			slog.String("error", err.Error()),
		)
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	const attempts = 3
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if lastErr = producer.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		base := time.Duration(1<<uint(attempt)) * time.Second
		jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
		wait := base + jitter
		logger.Warn("kafka producer ping failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", wait),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("kafka producer ping failed after %d attempts: %w", attempts, lastErr)
}
