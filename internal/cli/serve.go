package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/cronkit/internal/metrics"
	"github.com/livinlefevreloca/cronkit/internal/scheduler"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command, which keeps the run index
// current and exposes planner metrics until interrupted.
func NewServeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the planner and metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			logger, err := cfg.Logging.NewLogger(env.Stderr)
			if err != nil {
				return err
			}

			logger.Info("database configuration",
				"driver", cfg.Database.Driver,
				"skip_migrations", cfg.Database.SkipMigrations)

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			planner, err := scheduler.NewPlanner(scheduler.PlannerConfig{
				Source:          database,
				Metrics:         metrics.New(registry),
				Logger:          logger,
				LookaheadWindow: cfg.Planner.LookaheadWindow,
				GracePeriod:     cfg.Planner.GracePeriod,
				MaxRunsPerJob:   cfg.Planner.MaxRunsPerJob,
				Now:             env.Now,
			})
			if err != nil {
				return err
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var server *http.Server
			if cfg.Metrics.Enabled {
				server = &http.Server{
					Addr:              cfg.Metrics.Addr(),
					Handler:           metrics.Handler(registry),
					ReadHeaderTimeout: 10 * time.Second,
				}
				go func() {
					logger.Info("metrics enabled", "address", server.Addr)
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "error", err)
						stop()
					}
				}()
			}

			err = planner.Run(ctx, cfg.Planner.RebuildInterval)

			logger.Info("shutting down gracefully")
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if serr := server.Shutdown(shutdownCtx); serr != nil {
					logger.Error("metrics server shutdown failed", "error", serr)
				}
			}

			return err
		},
	}
}
