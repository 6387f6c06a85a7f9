package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dhima/client-service/internal/api"
	"github.com/dhima/client-service/internal/health"
	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/storage"
	"github.com/dhima/client-service/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCmd builds the top-level `clientsvc` command. Without a
// subcommand it serves the API.
func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "clientsvc",
		Short:        "Client records API over MySQL",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	})
	root.AddCommand(newPingCmd(&envFile))
	return root
}

func newPingCmd(envFile *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Open the configured pool, ping it and print its stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			registry := storage.NewRegistry(logger)
			defer registry.Close() //nolint:errcheck

			pool, err := api.ConnectDatabase(ctx, cfg, registry, logger)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]any{
				"pool":  pool.Name(),
				"stats": health.StatsFrom(pool.Stats()),
			}, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

func runServe(ctx context.Context, envFile string) error {
	cfg, logger, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	srv, err := api.NewServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return err
	}
	return srv.Serve()
}

func bootstrap(envFile string) (config.App, logging.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.App{}, nil, err
	}
	logger, err := logging.NewWithOptions(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
	})
	if err != nil {
		return config.App{}, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}
