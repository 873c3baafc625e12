package sweeperapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/app/engine"
	"github.com/ivankudzin/matchcore/internal/config"
	"github.com/ivankudzin/matchcore/internal/jobs/sweep"
	"github.com/ivankudzin/matchcore/internal/metrics"
)

const defaultInterval = 6 * time.Hour

type runner interface {
	Run(ctx context.Context) (sweep.Stats, error)
}

type App struct {
	cfg     config.Config
	logger  *zap.Logger
	stores  *engine.Stores
	job     runner
	metrics *http.Server
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	stores, err := engine.OpenStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	e := engine.New(stores.Profiles, stores.Groups, cfg.Engine, log)

	metrics.RegisterEngineMetrics()
	job := sweep.New(e.Profiles, e.Reconcile, cfg.Sweeper.BatchSize, log.Named("sweep"))
	job.AttachObserver(metrics.Engine{})

	var metricsServer *http.Server
	if cfg.Sweeper.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Sweeper.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return &App{
		cfg:     cfg,
		logger:  log,
		stores:  stores,
		job:     job,
		metrics: metricsServer,
	}, nil
}

// Run sweeps once at start and then on every tick until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a.metrics != nil {
		go func() {
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	interval := a.cfg.Sweeper.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	a.logger.Info("sweeper started", zap.Duration("interval", interval))
	return runLoop(ctx, a.job, interval, a.logger)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
	}
	if err := a.stores.Close(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	return shutdownErr
}

// runLoop keeps going after a failed run; the next tick retries.
func runLoop(ctx context.Context, job runner, interval time.Duration, log *zap.Logger) error {
	runOnce := func() {
		if _, err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("sweep run failed", zap.Error(err))
		}
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}
