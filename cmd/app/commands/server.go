package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/zkgate/internal/app"
	"github.com/allisson/zkgate/internal/config"
)

// shutdownTimeout bounds the graceful shutdown of both servers.
const shutdownTimeout = 30 * time.Second

// lifecycleServer is the part of the API and metrics servers RunServer drives.
type lifecycleServer interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer validates the configuration, builds the container and serves the API
// plus the metrics listener when enabled, until SIGINT/SIGTERM or a server fails.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("db_driver", cfg.DBDriver),
		slog.String("dispatch_driver", cfg.DispatchDriver),
		slog.Bool("replay_protection", cfg.ReplayProtectionEnabled),
	)

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := map[string]lifecycleServer{"api": server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers["metrics"] = metricsServer
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, servers, logger)
}

// serve runs every server until ctx is done or one of them fails, then shuts all of them down.
func serve(ctx context.Context, servers map[string]lifecycleServer, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, server := range servers {
		g.Go(func() error {
			if err := server.Start(gctx); err != nil {
				return fmt.Errorf("%s server error: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		} else {
			logger.Error("server error, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for name, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s server shutdown: %w", name, err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
