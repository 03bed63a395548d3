// Package app wires the dashboard components from a Config. Both the server
// and the CLI build their object graph here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cosurvival/internal/bootstrap"
	"cosurvival/internal/dashboard/metrics"
	"cosurvival/internal/dashboard/service"
	"cosurvival/internal/dashboard/snapshot"
	"cosurvival/internal/dashboard/store"
	platformbadger "cosurvival/internal/platform/badger"
	"cosurvival/internal/platform/config"
	platformredis "cosurvival/internal/platform/redis"
	"cosurvival/internal/querycache"
	"cosurvival/internal/remote"
)

// App holds the wired components and everything that needs closing.
type App struct {
	Config  config.Config
	Store   *store.Store
	Cache   *querycache.Cache
	Remote  *remote.Client
	Service *service.Service

	logger  *slog.Logger
	closers []func() error
	cancel  context.CancelFunc
}

// Option tweaks the build.
type Option func(*buildOptions)

type buildOptions struct {
	metrics   *metrics.Metrics
	bootstrap service.BootstrapLoader
	snapshots store.SnapshotStore
}

// WithMetrics sets the dashboard metrics. Without it none are recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *buildOptions) {
		o.metrics = m
	}
}

// WithBootstrapLoader overrides the loader chosen from Config.Bootstrap.
func WithBootstrapLoader(l service.BootstrapLoader) Option {
	return func(o *buildOptions) {
		o.bootstrap = l
	}
}

// WithSnapshotStore overrides the backend chosen from Config.Snapshot.
func WithSnapshotStore(s store.SnapshotStore) Option {
	return func(o *buildOptions) {
		o.snapshots = s
	}
}

// Build opens the snapshot backend, hydrates the store and wires the
// service. Bootstrap is not run; callers decide when.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	a := &App{Config: cfg, logger: logger, cancel: cancel}

	snapshots := o.snapshots
	if snapshots == nil {
		var err error
		snapshots, err = a.openSnapshots(ctx, bgCtx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.Store = store.New(ctx,
		store.WithLogger(logger),
		store.WithSnapshotStore(snapshots),
	)

	a.Cache = querycache.New(
		querycache.WithLogger(logger),
		querycache.WithRetry(cfg.Cache.MaxRetries, cfg.Cache.RetryBase, cfg.Cache.RetryCap),
		querycache.WithRetryable(remote.IsRetryable),
	)
	a.closers = append(a.closers, func() error {
		a.Cache.Close()
		return nil
	})

	client, err := remote.New(
		remote.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout},
		remote.WithLogger(logger),
		remote.WithTokenSource(a.Store.CSRFToken),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Remote = client

	loader := o.bootstrap
	if loader == nil {
		loader = NewBootstrapLoader(cfg.Bootstrap, logger)
	}
	svcOpts := []service.Option{
		service.WithLogger(logger),
		service.WithBootstrapLoader(loader),
	}
	if o.metrics != nil {
		svcOpts = append(svcOpts, service.WithMetrics(o.metrics))
	}
	svc, err := service.New(client, a.Cache, a.Store, svcOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = svc
	// Watches must stop before the cache they listen to.
	a.closers = append(a.closers, func() error {
		svc.Close()
		return nil
	})
	return a, nil
}

func (a *App) openSnapshots(ctx, bgCtx context.Context) (store.SnapshotStore, error) {
	cfg := a.Config
	switch cfg.Snapshot.Backend {
	case config.SnapshotFile:
		f, err := snapshot.NewFile(cfg.Snapshot.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.SnapshotBadger:
		bcfg := platformbadger.DefaultConfig(cfg.Snapshot.Path)
		bcfg.Logger = a.logger
		db, err := platformbadger.Open(bcfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		go platformbadger.RunGC(bgCtx, db, bcfg.GCInterval, bcfg.GCDiscardRatio, a.logger)
		return snapshot.NewBadger(db), nil
	case config.SnapshotRedis:
		client, err := platformredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis snapshots: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return snapshot.NewRedis(client, snapshot.WithTTL(cfg.Snapshot.TTL)), nil
	case config.SnapshotMemory, "":
		return snapshot.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}

// NewBootstrapLoader picks the payload source named by cfg. File wins over
// Env; with neither the process-wide default loader is used.
func NewBootstrapLoader(cfg config.Bootstrap, logger *slog.Logger) *bootstrap.Loader {
	switch {
	case cfg.File != "":
		return bootstrap.NewLoader(bootstrap.FromFile(cfg.File), bootstrap.WithLogger(logger))
	case cfg.Env != "":
		return bootstrap.NewLoader(bootstrap.FromEnv(cfg.Env), bootstrap.WithLogger(logger))
	default:
		return bootstrap.Default()
	}
}

// Close releases resources in reverse order of acquisition. It is safe to
// call on a partially built App.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
