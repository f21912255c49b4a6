// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/questboard/questboard/internal/auth"
	authpg "github.com/questboard/questboard/internal/auth/postgres"
	"github.com/questboard/questboard/internal/config"
	"github.com/questboard/questboard/internal/httpapi"
	"github.com/questboard/questboard/internal/logging"
	"github.com/questboard/questboard/internal/observability"
	"github.com/questboard/questboard/internal/quest"
	questpg "github.com/questboard/questboard/internal/quest/postgres"
	"github.com/questboard/questboard/internal/store"
)

// Default values for serve command flags.
const (
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLogFormat   = "json"
)

// serveOptions holds the flags that live outside the config file.
type serveOptions struct {
	metricsAddr string
	logFormat   string
	autoMigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QuestBoard API server",
		Long: `Start the HTTP API server. Configuration is read from the config
file, QUESTBOARD_* environment variables, and flags, in that order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	defaults := config.Default()
	cmd.Flags().Int("server.port", defaults.Server.Port, "HTTP listen port")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("stage", string(defaults.Stage), "deployment stage (local, development, production)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", false, "apply pending database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.logFormat != "json" && opts.logFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log-format must be 'json' or 'text', got %q", opts.logFormat)
	}

	logging.SetDefault("questboard", version, opts.logFormat)
	logger := slog.Default()

	logger.Info("starting questboard",
		"stage", string(cfg.Stage),
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	if opts.autoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	secrets := cfg.Secrets.Auth()
	hasher := auth.NewArgon2idHasher()
	adventurers := authpg.NewAdventurerRepository(pool)
	commanders := authpg.NewGuildCommanderRepository(pool)
	quests := questpg.NewQuestRepository(pool)

	sessions, err := auth.NewService(secrets, adventurers, commanders, hasher)
	if err != nil {
		return err
	}
	registration, err := auth.NewRegistrationService(adventurers, commanders, hasher)
	if err != nil {
		return err
	}

	viewing, err := quest.NewViewingService(quests)
	if err != nil {
		return err
	}
	ops, err := quest.NewOpsService(quests, quests)
	if err != nil {
		return err
	}
	crew, err := quest.NewCrewService(quests, quests)
	if err != nil {
		return err
	}
	journey, err := quest.NewJourneyService(quests, quests)
	if err != nil {
		return err
	}

	// Start observability server if configured
	var metrics *observability.Metrics
	var obsServer *observability.Server
	if opts.metricsAddr != "" {
		obsServer = observability.NewServer(opts.metricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	authHandler := httpapi.NewAuthHandler(sessions, registration, cfg.Stage.Secure(), logger, metrics)
	questHandler := httpapi.NewQuestHandler(viewing, ops, crew, journey, logger)

	apiServer := httpapi.NewServer(httpapi.ServerConfig{
		Port:           cfg.Server.Port,
		BodyLimitMB:    cfg.Server.BodyLimitMB,
		TimeoutSeconds: cfg.Server.TimeoutSeconds,
	}, authHandler, questHandler, secrets, logger, metrics)

	apiErrChan, err := apiServer.Start()
	if err != nil {
		return oops.Code("SERVER_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "http-api")

	cmd.Println("QuestBoard server started")
	logger.Info("questboard ready", "addr", apiServer.Addr())

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a server reports an error,
// so one failing listener takes the whole process through graceful shutdown.
// It exits when an error arrives, the channel closes, or the context ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
