package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/louisinayinde/dashboard-finance/src/database/migrations"
	"github.com/louisinayinde/dashboard-finance/src/model"
)

// MainDB is the primary read/write database connection used by the
// application. Set once by InitMainDB at startup.
var MainDB *gorm.DB

// InitMainDB initializes the main database connection and runs
// migrations. Call once from main() before any repository is built.
func InitMainDB() error {
	config := GetConfig()

	db, err := gorm.Open(postgres.Open(config.DatabaseURL),
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime) * time.Minute)

	MainDB = db

	logrus.Info("[database] MainDB connection established")

	if err := AutoMigrate(MainDB); err != nil {
		return err
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}

// AutoMigrate runs schema migrations followed by the recorded data
// migrations. Exposed separately so the seed command and tests can
// migrate a database they opened themselves.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Stock{},
		&model.StockPrice{},
		&model.Position{},
		&model.Watchlist{},
		&model.WatchlistItem{},
		&model.ScrapingLog{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run schema migrations: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	return nil
}
