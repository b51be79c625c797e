package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"

	httpAdapter "github.com/lorrc/event-board/internal/adapters/primary/http"
	"github.com/lorrc/event-board/internal/adapters/secondary/cache"
	"github.com/lorrc/event-board/internal/adapters/secondary/notify"
	"github.com/lorrc/event-board/internal/adapters/secondary/postgres"
	"github.com/lorrc/event-board/internal/adapters/secondary/realtime"
	"github.com/lorrc/event-board/internal/auth"
	"github.com/lorrc/event-board/internal/config"
	"github.com/lorrc/event-board/internal/core/livecomments"
	"github.com/lorrc/event-board/internal/core/ports"
	"github.com/lorrc/event-board/internal/core/services"
	"github.com/lorrc/event-board/internal/infrastructure/logging"
	"github.com/lorrc/event-board/internal/infrastructure/metrics"
)

func main() {
	envFile := pflag.String("env-file", "", "read environment variables from this file first")
	migrateUp := pflag.Bool("migrate", false, "apply database migrations before serving")
	migrationsPath := pflag.String("migrations", "", "migrations directory (overrides DB_MIGRATIONS_PATH)")
	seed := pflag.Bool("seed", false, "insert demo events into an empty database")
	pflag.Parse()

	// 1. Load Configuration
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *migrationsPath != "" {
		cfg.Database.MigrationsPath = *migrationsPath
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Migrations
	if *migrateUp || cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Initialize Database Pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 5. Repositories (Secondary Adapters)
	eventRepo := postgres.NewEventRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)

	if *seed {
		seeder := postgres.NewSeeder(postgres.NewTransactionManager(pool), eventRepo, logger)
		if _, err := seeder.SeedEvents(ctx, postgres.DemoEvents(time.Now())); err != nil {
			logger.Error("failed to seed events", "error", err)
			os.Exit(1)
		}
	}

	var events ports.EventRepository = eventRepo
	redisClient := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
		events = cache.NewEventCache(eventRepo, redisClient, cfg.Redis.KeyPrefix, cfg.Redis.EventTTL, logger)
	}

	// 6. Real-time Components
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	listener := postgres.NewCommentListener(pool, hub, logger)
	go listener.Run(ctx)

	// 7. Notifier
	var notifier ports.Notifier
	if cfg.AMQP.Enabled {
		publisher := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err := publisher.Connect(); err != nil {
			// Notify reconnects on demand; comments are still stored.
			logger.Warn("amqp broker unreachable at startup", "error", err)
		}
		defer publisher.Close()
		notifier = publisher
	} else {
		notifier = notify.NewLogNotifier(events, logger)
	}

	// 8. Services (Core)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessionService := services.NewSessionService(tokenManager)
	eventService := services.NewEventService(events)
	commentService := services.NewCommentService(commentRepo, hub, notifier)

	var m *metrics.Metrics
	var sessionMetrics ports.SessionMetrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.RegisterHubGauges(hub.RoomCount, hub.SubscriberCount)
		sessionMetrics = m
	}

	var cacheCheck httpAdapter.HealthChecker
	if redisClient != nil {
		cacheCheck = httpAdapter.HealthCheckFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// 9. Router (Primary Adapters)
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Events:   eventService,
		Comments: commentService,
		Sessions: sessionService,
		NewSession: func(opts ...livecomments.Option) *livecomments.Session {
			return livecomments.NewSession(eventService, commentService,
				append(opts, livecomments.WithMetrics(sessionMetrics))...)
		},
		Health:  httpAdapter.NewHealthHandler(pool, cacheCheck, cfg.App.Version),
		Metrics: m,
	})

	// 10. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Let in-flight notifications finish before the broker connection closes.
	commentService.Shutdown()

	logger.Info("server shutdown complete")
}

// runMigrations applies every pending migration in dir.
func runMigrations(databaseURL, dir string, logger *slog.Logger) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}

	mig, err := migrate.New("file://"+abs, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
