package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pickemleague/pickem-server/internal/api"
	"github.com/pickemleague/pickem-server/internal/config"
	"github.com/pickemleague/pickem-server/internal/factory"
	"github.com/pickemleague/pickem-server/internal/services/token"
	redisstorage "github.com/pickemleague/pickem-server/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A .env file is optional; real env vars win either way
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: string(cfg.Storage.Type),
		LockScope:   cfg.Picks.LockScope,
		TokenConfig: token.Config{
			AccessSecret:  []byte(cfg.Auth.AccessSecret),
			RefreshSecret: []byte(cfg.Auth.RefreshSecret),
			AccessTTL:     cfg.Auth.AccessTTL,
			RefreshTTL:    cfg.Auth.RefreshTTL,
		},
	}

	switch cfg.Storage.Type {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case config.StoragePostgres:
		factoryCfg.PostgresDSN = cfg.Storage.PostgresDSN
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Seed the initial admin account if configured
	if cfg.Auth.SeedAdminUsername != "" {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, err := app.AuthService.EnsureAdmin(seedCtx, cfg.Auth.SeedAdminUsername, cfg.Auth.SeedAdminPassword)
		cancel()
		if err != nil {
			logger.Error("failed to seed admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("admin seeded", slog.String("user_id", string(admin.ID)))
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:       logger,
		TokenService: app.TokenService,
		AuthService:  app.AuthService,
		GamesService: app.GamesService,
		PicksService: app.PicksService,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.HTTP.Addr
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.HTTP.ShutdownTimeout
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
