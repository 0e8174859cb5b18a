package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	limiter := initRateLimiter(ctx, redisClient, &logger)

	bus := events.NewEventBus()
	subscribeBookingEvents(bus, &logger)

	policy := service.BookingPolicy{
		StrictStart:           cfg.Booking.StrictStart,
		AllowRedecideRejected: cfg.Booking.AllowRedecideRejected,
	}
	services := api.Services{
		Users:    service.NewUserService(db, &logger),
		Items:    service.NewItemService(db, &logger),
		Bookings: service.NewBookingService(db, bus, policy, &logger),
		Requests: service.NewRequestService(db, &logger),
	}

	httpServer := api.NewHTTPServer(*cfg, services, limiter, db, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API.GRPC, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
		go grpcServer.WatchHealth(ctx)
	}

	if cfg.Database.Driver == config.DriverSQLite {
		go database.NewBackupService(db.Path(), cfg.Backup, &logger).Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		// the failover store keeps probing, so the client is kept
		logger.Warn().Err(err).Msg("redis connection failed, rate limits fall back to memory")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func initRateLimiter(ctx context.Context, client *redis.Client, logger *zerolog.Logger) domain.RateLimitStore {
	memory := repository.NewMemoryRateLimitStore()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				memory.Cleanup()
			}
		}
	}()

	if client == nil {
		return memory
	}
	return repository.NewFailoverRateLimitStore(repository.NewRedisRateLimitStore(client), memory, logger)
}

// subscribeBookingEvents logs booking transitions and counts them.
func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	eventLog := logging.Component(logger, "events")

	handler := func(event *events.Event) error {
		payload, err := events.DecodeBooking(event)
		if err != nil {
			return err
		}
		metrics.IncBookingTransition(payload.Status)
		eventLog.Info().
			Str("event", event.Type).
			Int64("booking_id", payload.BookingID).
			Int64("item_id", payload.ItemID).
			Int64("booker_id", payload.BookerID).
			Int64("changed_by", payload.ChangedByID).
			Str("status", payload.Status).
			Msg("booking event")
		return nil
	}

	bus.Subscribe(handler, events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected)
	bus.OnError(func(event *events.Event, err error) {
		eventLog.Error().Err(err).Str("event", event.Type).Msg("event handler failed")
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9100
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Str("http_addr", httpServer.Addr()).Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("http server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
