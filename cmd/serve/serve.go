// Package serve runs the HTTP resolution API and the reclassification scheduler
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/internal/api"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolution API over HTTP",
	Long: `Serve the resolution API over HTTP until interrupted.

Endpoints:
  POST /api/v1/resolve        resolve one line context
  POST /api/v1/resolve/batch  resolve an array of line contexts
  GET  /api/v1/rules          current rule snapshot
  GET  /healthz               liveness probe

When scheduler.enabled is set, unassigned lines stored in Postgres are
reclassified on scheduler.schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Run(ctx, c)
	},
}

// NewHTTPServer builds the HTTP server from the server configuration.
func NewHTTPServer(c *container.Container) *http.Server {
	cfg := c.GetConfig()
	server := api.NewServer(c.GetRuleSource(), c.GetResolver(), c.GetLogger())
	return &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, c *container.Container) error {
	logger := c.GetLogger()

	if c.GetConfig().Scheduler.Enabled {
		scheduler, err := c.NewReclassificationScheduler()
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := NewHTTPServer(c)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Resolution API listening", logging.Field{Key: "address", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Resolution API stopped")
	return nil
}
