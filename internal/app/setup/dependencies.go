package setup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/auth"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/google"
	publisher "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.ReferralConfig
	Logger         *slog.Logger
	DB             *gorm.DB
	Bus            *events.Bus
	Registry       *prometheus.Registry
	Metrics        *metrics.ReferralMetrics
	EventPublisher *publisher.DefaultKafkaPublisher
	Mailer         notifier.Mailer
	Tokens         *auth.TokenManager
	Verifier       domain.IdentityVerifier
	Repositories   *Repositories

	closers []io.Closer
}

type Repositories struct {
	ReferralRepo domain.ReferralRepository
	PayoutRepo   domain.PayoutRepository
	UserRepo     domain.UserRepository
}

func InitializeDependencies(cfg *config.ReferralConfig, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = slog.Default()
	}
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Bus:      events.NewBus(logger),
		Registry: prometheus.NewRegistry(),
		Mailer:   notifier.NewMailer(cfg.SMTP, logger),
		Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Verifier: google.NewIDTokenVerifier(cfg.Auth.GoogleClientID),
	}
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewReferralMetrics(deps.Registry)

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("repositories: %w", err)
	}

	if cfg.KafkaService.Enabled {
		pub := publisher.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers(), cfg.KafkaService.Topic)
		deps.EventPublisher = pub
		deps.closers = append(deps.closers, pub)
		logger.Info("kafka forwarding enabled", "brokers", cfg.KafkaService.Brokers(), "topic", cfg.KafkaService.Topic)
	}
	return deps, nil
}

func (d *Dependencies) initRepositories() error {
	if d.Config.ReferralDB.Driver == "memory" {
		store := memory.NewStore()
		d.Repositories = &Repositories{ReferralRepo: store, PayoutRepo: store, UserRepo: store}
		d.Logger.Warn("using in-memory store, data is lost on restart")
		return nil
	}

	db, err := postgres.Open(d.Config.ReferralDB)
	if err != nil {
		return err
	}
	d.DB = db
	if sqlDB, err := db.DB(); err == nil {
		d.closers = append(d.closers, sqlDB)
	}

	if !d.Config.ReferralDB.SkipMigrations {
		if err := migrate.Run(db, d.Config.ReferralDB); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	d.Repositories = &Repositories{
		ReferralRepo: repository.NewDefaultReferralRepository(db),
		PayoutRepo:   repository.NewDefaultPayoutRepository(db),
		UserRepo:     repository.NewDefaultUserRepository(db),
	}
	return nil
}

// Close releases the database pool, the kafka forwarder and its writer.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
