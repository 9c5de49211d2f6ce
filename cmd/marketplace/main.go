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

	"marketplace/internal/booking"
	"marketplace/internal/client"
	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/export"
	"marketplace/internal/logging"
	"marketplace/internal/metrics"
	"marketplace/internal/repository"
	"marketplace/internal/service"
	"marketplace/internal/wallet"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var reported *commandError
		if errors.As(err, &reported) {
			os.Exit(1)
		}
		log.Fatalf("Fatal error: %v", err)
	}
}

type app struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	bus      *events.EventBus
	auth     *service.AuthService
	bookings *service.BookingService
	catalog  *service.CatalogService
	wallet   *service.WalletService
	exporter *export.Exporter
	out      io.Writer
	errOut   io.Writer
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(os.Stdout)
		return nil
	}

	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	a, err := newApp(cfg, redisClient, logger)
	if err != nil {
		return err
	}

	return a.dispatch(ctx, args)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "cli"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Debug().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSessions(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(cfg.Session.TTL)
	if redisClient == nil {
		logger.Warn().Msg("no redis configured, sessions last for this process only")
		return memory
	}
	primary := repository.NewRedisSessionRepository(redisClient, cfg.Session.TTL, cfg.Session.KeyPrefix)
	return repository.NewFailoverSessionRepository(primary, memory, logging.Component(logger, "sessions"))
}

func newApp(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (*app, error) {
	grid, err := booking.NewGrid(cfg.Booking.FirstSlot, cfg.Booking.LastSlot, cfg.Booking.SlotMinutes)
	if err != nil {
		return nil, fmt.Errorf("booking grid: %w", err)
	}

	api := client.New(cfg.API, logging.Component(logger, "client"))
	if redisClient != nil {
		api.UseRedisCache(redisClient, cfg.Cache.CatalogTTL)
	}

	bus := events.NewEventBus()
	serviceLogger := logging.Component(logger, "service")
	gate := wallet.NewGate(api, serviceLogger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		auth:     service.NewAuthService(api, initSessions(cfg, redisClient, logger), cfg.Session.Name, serviceLogger),
		bookings: service.NewBookingService(api, gate, bus, grid, cfg.Booking.Loc(), serviceLogger),
		catalog:  service.NewCatalogService(api, bus, serviceLogger),
		wallet:   service.NewWalletService(api, bus, cfg.Wallet, serviceLogger),
		exporter: export.NewExporter(cfg.Exports.Path, logging.Component(logger, "export")),
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
	a.subscribeNotifier()
	return a, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
