package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/app/background"
	"github.com/LavaJover/shvark-referral-service/internal/app/setup"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const appName = "referral-service"

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Referral tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (YAML), defaults to $REFERRAL_CONFIG_PATH")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(configPath)
			},
		},
		&cobra.Command{
			Use:   "sweep-reminders",
			Short: "Claim every due reminder once and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return sweepReminders(cmd.Context(), configPath)
			},
		},
	)
	return cmd
}

func loadConfig(path string) (*config.ReferralConfig, error) {
	if path == "" {
		path = os.Getenv("REFERRAL_CONFIG_PATH")
	}
	if path == "" {
		return config.LoadEnv()
	}
	return config.Load(path)
}

// bootstrap loads config and installs the configured slog logger as default.
func bootstrap(configPath string) (*config.ReferralConfig, *slog.Logger, io.Closer, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, closer, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)
	return cfg, log, closer, nil
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, closer, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	deps, err := setup.InitializeDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			slog.Error("failed to release dependencies", "error", err.Error())
		}
	}()
	ucs := setup.InitializeUseCases(deps)
	engine := setup.InitializeRouter(deps, ucs)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	var sweep time.Duration
	if cfg.Reminders.ServerSweep {
		sweep = cfg.Reminders.PollInterval
	}
	tasks := background.NewBackgroundTasks(ucs.ReferralUsecase, background.Options{SweepInterval: sweep})
	if err := tasks.StartAll(gctx); err != nil {
		return fmt.Errorf("background tasks: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	g.Go(func() error {
		slog.Info("http server started", "address", srv.Addr, "env", cfg.Env, "db_driver", cfg.ReferralDB.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()
		slog.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runMigrate(configPath string) error {
	cfg, _, closer, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.ReferralDB.Driver == "memory" {
		return errors.New("nothing to migrate for the memory driver")
	}
	db, err := postgres.Open(cfg.ReferralDB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := migrate.Run(db, cfg.ReferralDB); err != nil {
		return err
	}
	slog.Info("migrations applied", "driver", cfg.ReferralDB.Driver)
	return nil
}

func sweepReminders(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, closer, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	deps, err := setup.InitializeDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	ucs := setup.InitializeUseCases(deps)
	due, err := ucs.ReferralUsecase.CheckDueReminders(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, r := range due {
		fmt.Printf("%s\t%s\t%s\n", r.ID, r.ClientName, r.ReferrerName)
	}
	slog.Info("reminder sweep finished", "fired", len(due))
	return nil
}
