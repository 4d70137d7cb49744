package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mcoot/impostorgame/internal/api"
	"github.com/mcoot/impostorgame/internal/factory"
	"github.com/mcoot/impostorgame/internal/feed"
)

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := factory.New(ctx, cfg.factoryConfig(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("error releasing resources", slog.String("error", err.Error()))
		}
	}()

	// Relay events between nodes when a bus is configured
	busDone := make(chan struct{})
	if app.Bus != nil {
		go func() {
			defer close(busDone)
			if err := app.Bus.Run(ctx); err != nil {
				logger.Error("event bus stopped, delivering events to local subscribers only",
					slog.String("error", err.Error()))
			}
		}()
	} else {
		close(busDone)
	}

	go cleanupHubs(ctx, app.HubManager, cfg.CleanupInterval)

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		RoomController:   app.RoomController,
		HubManager:       app.HubManager,
		Clock:            app.Clock,
		WebSocketOptions: feed.WebSocketOptions{OriginPatterns: cfg.AllowedOrigins},
		HealthCheck:      app.HealthCheck,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Bool("event_bus", app.Bus != nil))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
			<-busDone
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Close feeds first so streaming handlers return
		app.HubManager.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	<-busDone
	logger.Info("server stopped")
}

// cleanupHubs periodically drops feed hubs nobody is listening to
func cleanupHubs(ctx context.Context, hubs *feed.HubManager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hubs.CleanupEmptyHubs()
		}
	}
}
