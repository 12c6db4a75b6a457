package migrate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"gorm.io/gorm"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Run brings the schema up to date: SQL migrations for postgres, model auto-migration for mysql.
func Run(db *gorm.DB, cfg config.ReferralDB) error {
	switch cfg.Driver {
	case "postgres":
		return RunMigrations(db, cfg.MigrationsPath)
	case "mysql":
		if err := postgres.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrating mysql schema: %w", err)
		}
		slog.Info("mysql schema auto-migrated")
		return nil
	default:
		return fmt.Errorf("driver %q has no schema", cfg.Driver)
	}
}

func RunMigrations(db *gorm.DB, migrationPath string) error {

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading migration version: %w", err)
	}
	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
