package app

import (
	"context"
	"fmt"

	"github.com/deusflow/aidigest/internal/config"
	"github.com/deusflow/aidigest/internal/dates"
	"github.com/deusflow/aidigest/internal/insights"
	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/metrics"
	"github.com/deusflow/aidigest/internal/retry"
	"github.com/deusflow/aidigest/internal/storage"
)

// App bundles the wired service and whatever must be closed on exit.
type App struct {
	Config  *config.Config
	Service *insights.Service
	Metrics *metrics.Metrics

	closers []func() error
}

// New wires storage, synthesis and processing from cfg.
func New(ctx context.Context, cfg *config.Config, clock dates.Clock) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.Global}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	store := storage.NewDatasetStore(backend, cfg.DefaultSnapshot)

	baseline, err := insights.LoadBaseline(cfg.BaselineFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	roster, err := insights.LoadRoster(cfg.ExpertsFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	feed := insights.NewStubFeed(clock, a.Metrics)
	processor := insights.NewProcessor(feed, roster, cfg.MaxResultsPerExpert, clock, a.Metrics)
	a.Service = insights.NewService(store, insights.NewSynthesizer(baseline), processor, clock, a.Metrics)

	logger.Debug("app wired",
		"backend", cfg.StorageBackend,
		"baseline_sections", len(baseline.Sections),
		"experts", len(roster),
	)
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (storage.Backend, error) {
	cfg := a.Config
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pb, err := storage.NewPostgresBackend(ctx, cfg.DatabaseURL, retry.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pb.Close)
		return pb, nil
	case config.BackendFile:
		return storage.NewFileBackend(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close releases backend resources.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
