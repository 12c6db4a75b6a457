package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured SQL dialect.
func Open(cfg config.ReferralDB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Dsn)
	case "mysql":
		dialector = mysql.Open(cfg.Dsn)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL dialect", cfg.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
}

func MustInitDB(cfg *config.ReferralConfig) *gorm.DB {
	db, err := Open(cfg.ReferralDB)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}
	return db
}

// AutoMigrate creates the schema from the models. Postgres deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.ReferralModel{},
		&models.PayoutModel{},
		&logger.ReferralAuditEvent{},
	)
}
