package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/infrastructure/db"
	"github.com/linkboard/linkboard/internal/infrastructure/logger"
	"github.com/linkboard/linkboard/internal/infrastructure/telemetry"
	"github.com/linkboard/linkboard/internal/processing/auth"
	"github.com/linkboard/linkboard/internal/processing/links"
	"github.com/linkboard/linkboard/internal/storage/postgres"
	redisStorage "github.com/linkboard/linkboard/internal/storage/redis"
	httpTransport "github.com/linkboard/linkboard/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		var err error
		shutdownTracer, err = telemetry.InitTracer(cfg.OTel.Endpoint, cfg.App.Name, cfg.App.Version)
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.Database.URL); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pg, err := db.ConnectPostgres(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pg.Close()

	linkRepo, err := postgres.NewLinksRepository(pg)
	if err != nil {
		logger.Fatal("Failed to initialize links repository", zap.Error(err))
	}
	statsRepo, err := postgres.NewStatsRepository(pg)
	if err != nil {
		logger.Fatal("Failed to initialize stats repository", zap.Error(err))
	}
	userRepo, err := postgres.NewUsersRepository(pg)
	if err != nil {
		logger.Fatal("Failed to initialize users repository", zap.Error(err))
	}
	sessionRepo, err := postgres.NewSessionsRepository(pg)
	if err != nil {
		logger.Fatal("Failed to initialize sessions repository", zap.Error(err))
	}

	linkSvc := links.NewService(linkRepo, statsRepo, links.NewCryptoCodeGenerator(), cfg.Shortener.CodeLength)
	authSvc := auth.NewService(userRepo, sessionRepo, auth.NewTokenSigner(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL)

	opts := httpTransport.DefaultRouterOptions()

	redisClient, err := redisStorage.NewClient(ctx, redisStorage.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Failed to connect to Redis, rate limiting disabled", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		opts.RateCounter = redisStorage.NewFixedWindowLimiter(redisClient, "rl:create", time.Minute)
	}

	router := httpTransport.NewRouterWithOptions(httpTransport.RouterDeps{
		Config:      cfg,
		LinkService: linkSvc,
		AuthService: authSvc,
		DB:          pg.Pool,
	}, opts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownTracer != nil {
			_ = shutdownTracer(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
