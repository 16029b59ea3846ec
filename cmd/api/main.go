package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vipride/booking-assistant/cmd/mainconfig"
	"github.com/vipride/booking-assistant/internal/api/router"
	"github.com/vipride/booking-assistant/internal/app/bootstrap"
	"github.com/vipride/booking-assistant/internal/bookings"
	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/internal/leads"
	"github.com/vipride/booking-assistant/internal/observability/metrics"
	"github.com/vipride/booking-assistant/internal/webchat"
	"github.com/vipride/booking-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	var sqlDB *sql.DB
	if pool != nil {
		defer pool.Close()
		sqlDB = stdlib.OpenDBFromPool(pool)
		defer func() { _ = sqlDB.Close() }()
	} else if cfg.IsProduction() {
		return errors.New("DATABASE_URL is required in production")
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, cfg.SessionBackend == "redis")
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metricsHandler, convMetrics := setupMetrics()

	notifier := bootstrap.BuildNotifier(cfg, bootstrap.BuildEmailSender(cfg, awsCfg, logger), logger)
	bookingRepo, leadsRepo := setupRepositories(pool)
	bookingService := bookings.NewService(bookingRepo, notifier, logger)

	sessions, err := bootstrap.BuildSessionStore(cfg, redisClient, logger)
	if err != nil {
		return err
	}
	llm, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		return err
	}
	defer closeLLM()

	assistant, err := bootstrap.BuildAssistant(cfg, bootstrap.AssistantDeps{
		LLM:       llm,
		Sessions:  sessions,
		Snapshots: bootstrap.BuildSnapshotStore(sqlDB),
		Bookings:  conversation.BookingServiceAdapter{Service: bookingService},
		Metrics:   convMetrics,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("build assistant: %w", err)
	}
	chat := conversation.NewSerialService(assistant)
	contact := bootstrap.ContactFromConfig(cfg)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        conversation.NewHandler(chat, contact, logger),
		WebChat:            webchat.NewHandler(chat, contact, nil, logger),
		LeadsHandler:       leads.NewHandler(leadsRepo, notifier, logger),
		BookingsHandler:    bookings.NewHandler(bookingService, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		HealthChecks:       healthChecks(pool, redisClient),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ReplyGenerateTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		logger.Warn("DATABASE_URL not set; using in-memory repositories")
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres")
	return pool
}

func setupRepositories(pool *pgxpool.Pool) (bookings.Repository, leads.Repository) {
	if pool == nil {
		return bookings.NewInMemoryRepository(), leads.NewInMemoryRepository()
	}
	return bookings.NewPostgresRepository(pool), leads.NewPostgresRepository(pool)
}

func setupMetrics() (http.Handler, *metrics.ConversationMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return handler, metrics.NewConversationMetrics(reg)
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
