package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/gridwatch/internal/api/http"
	"github.com/i474232898/gridwatch/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the ingestion scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	defer comps.Close()

	cfg, logger := comps.cfg, comps.logger

	// Scheduler that periodically fetches and stores grid data.
	sched := scheduler.New(comps.grids, cfg.FetchInterval, cfg.HTTPTimeout+15*time.Second, cfg.FetchOnStart, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(cfg.AllowOrigins)
	httpapi.RegisterRoutes(app, comps.grids, comps.batteries, comps.store, logger.Named("http"))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("http server listening", zap.String("port", cfg.Port))
	return listenUntilDone(ctx, app, ":"+cfg.Port, logger)
}

// listenUntilDone serves app on addr until ctx ends, then shuts it down.
// A listener failure is returned immediately so the process exits.
func listenUntilDone(ctx context.Context, app *fiber.App, addr string, logger *zap.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
	}
	return nil
}
