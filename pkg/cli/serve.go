// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/intrinsic-spiders/contact-relay/pkg/system"
	"github.com/intrinsic-spiders/contact-relay/pkg/telemetry"
	"github.com/intrinsic-spiders/contact-relay/pkg/version"
)

func newServeCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, o)
		},
	}
}

func runServe(cmd *cobra.Command, o *Options) error {
	zl := system.NewLogger(o.Debug)
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	log.With("version", version.Version, "commit", version.GitCommit).Info("Starting contact relay")
	o.Print(log)

	cfg, err := o.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing, err := telemetry.Init(ctx, telemetry.OptionsFromConfig(cfg.Telemetry, version.Version, log))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	app, err := NewApp(cfg, zl, o.Debug)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}
	app.Start()

	runErr := app.Server.Run(ctx)

	timeout, _ := cfg.Server.ShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Mail queue not fully drained", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warnw("Failed to flush traces", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("HTTP server: %w", runErr)
	}
	log.Info("Contact relay stopped")
	return nil
}
