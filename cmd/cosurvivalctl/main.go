// Package main provides cosurvivalctl, a command line client for the
// dashboard state: it syncs sections from the API, prints the persisted
// state and submits reviews without running the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cosurvival/internal/app"
	"cosurvival/internal/dashboard/models"
	"cosurvival/internal/dashboard/service"
	"cosurvival/internal/platform/config"
	"cosurvival/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath      string
	apiURL          string
	snapshotBackend string
	snapshotPath    string
	logLevel        string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:           "cosurvivalctl",
		Short:         "Inspect and sync the cosurvival dashboard state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "Dashboard API base URL")
	cmd.PersistentFlags().StringVar(&g.snapshotBackend, "snapshot-backend", "", "Snapshot backend (memory, file, badger, redis)")
	cmd.PersistentFlags().StringVar(&g.snapshotPath, "snapshot-path", "", "Snapshot directory for file and badger backends")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(syncCmd(&g), stateCmd(&g), reviewCmd(&g), bootstrapCmd(&g))
	return cmd
}

// load resolves config from env and file, then applies flag overrides.
func (g *globalFlags) load() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if g.configPath != "" {
		if err := cfg.LoadFile(g.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if g.apiURL != "" {
		cfg.API.BaseURL = g.apiURL
	}
	if g.snapshotBackend != "" {
		cfg.Snapshot.Backend = g.snapshotBackend
	}
	if g.snapshotPath != "" {
		cfg.Snapshot.Path = g.snapshotPath
	}
	cfg.Log.Level = g.logLevel
	cfg.Log.Format = "text"
	return cfg, nil
}

func (g *globalFlags) logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
}

// withApp builds and bootstraps the dashboard, runs fn and releases it.
func (g *globalFlags) withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := app.Build(ctx, cfg, g.logger(cmd, cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	a.Service.Bootstrap(ctx)
	return fn(ctx, a)
}

func syncCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch every remote section and persist the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(ctx context.Context, a *app.App) error {
				syncErr := a.Service.SyncAll(ctx)
				st := a.Service.Snapshot()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "user:            %s (%s)\n", st.UserID, st.UserRole)
				fmt.Fprintf(out, "advisor signals: %d\n", len(st.AdvisorSignals))
				fmt.Fprintf(out, "providers:       %d\n", len(st.Providers))
				if st.TribeGraph != nil {
					fmt.Fprintf(out, "tribe graph:     %d nodes, %d edges\n", len(st.TribeGraph.Nodes), len(st.TribeGraph.Edges))
				} else {
					fmt.Fprintln(out, "tribe graph:     none")
				}
				fmt.Fprintf(out, "recommendations: %d\n", len(st.Recommendations))
				return syncErr
			})
		},
	}
}

func stateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the dashboard state as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(_ context.Context, a *app.App) error {
				return writeJSON(cmd.OutOrStdout(), a.Service.Snapshot())
			})
		},
	}
}

func reviewCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work with reviews",
	}

	var req service.SubmitReviewRequest
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a review to the API and record it locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(ctx context.Context, a *app.App) error {
				entry, err := a.Service.SubmitReview(ctx, req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), entry)
			})
		},
	}
	submit.Flags().StringVar(&req.Author, "author", "", "Author (defaults to the current user)")
	submit.Flags().StringVar(&req.Lens, "lens", "", "Lens: tribe, teacher or recon")
	submit.Flags().StringVar(&req.Summary, "summary", "", "Review summary")
	submit.Flags().StringVar(&req.HighlightsText, "highlights", "", "Comma separated highlights")
	_ = submit.MarkFlagRequired("lens")
	_ = submit.MarkFlagRequired("summary")

	cmd.AddCommand(submit)
	return cmd
}

func bootstrapCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Inspect the bootstrap payload",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the bootstrap payload and the identity it resolves to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			payload := app.NewBootstrapLoader(cfg.Bootstrap, g.logger(cmd, cfg)).Load()
			source := "none"
			switch {
			case cfg.Bootstrap.File != "":
				source = "file:" + cfg.Bootstrap.File
			case cfg.Bootstrap.Env != "":
				source = "env:" + cfg.Bootstrap.Env
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"source":   source,
				"empty":    payload.IsEmpty(),
				"payload":  payload,
				"identity": payload.Identity(models.DefaultIdentity()),
			})
		},
	})
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
