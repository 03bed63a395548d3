package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"cosurvival/internal/app"
	dashboardhandler "cosurvival/internal/dashboard/handler"
	dashboardmetrics "cosurvival/internal/dashboard/metrics"
	"cosurvival/internal/platform/config"
	"cosurvival/internal/platform/httpserver"
	"cosurvival/internal/platform/logger"
	"cosurvival/internal/platform/metrics"
	"cosurvival/internal/platform/ratelimit"
	"cosurvival/pkg/platform/httputil"
	"cosurvival/pkg/platform/middleware/requestid"
)

// main wires the dashboard, serves it over HTTP and shuts down cleanly on
// SIGINT/SIGTERM. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, app.WithMetrics(dashboardmetrics.New()))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to release resources", "error", err)
		}
	}()

	identity := a.Service.Bootstrap(ctx)
	log.Info("dashboard bootstrapped",
		"user_id", identity.UserID,
		"role", identity.UserRole,
		"hydrated", a.Store.Hydrated(),
		"snapshot_backend", cfg.Snapshot.Backend,
	)
	// Initial warm-up; sections that fail keep their hydrated values.
	go func() {
		if err := a.Service.SyncAll(ctx); err != nil {
			log.Warn("initial dashboard sync incomplete", "error", err)
		}
	}()

	srv := httpserver.New(cfg.Server, newRouter(ctx, a, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting cosurvival dashboard", "addr", cfg.Server.Addr, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(ctx context.Context, a *app.App, log *slog.Logger) http.Handler {
	httpMetrics := metrics.New(prometheus.DefaultRegisterer)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(httpMetrics.Middleware)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"degraded": a.Store.Degraded(),
		})
	})

	var opts []dashboardhandler.Option
	if rl := a.Config.RateLimit; rl.Requests > 0 {
		window := ratelimit.NewWindow(rl.Requests, rl.Window)
		go sweep(ctx, window, rl.Window)
		limiter := ratelimit.NewMiddleware(window, ratelimit.ClientIP, log)
		opts = append(opts, dashboardhandler.WithMutationMiddleware(limiter.Handler))
	}
	dashboardhandler.New(a.Service, log, opts...).Register(r)
	return r
}

func sweep(ctx context.Context, window *ratelimit.Window, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			window.Sweep()
		}
	}
}
