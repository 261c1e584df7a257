package db

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/logist-zp/internal/config"
)

func New(cfg *config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	dialector, err := newDialector(cfg.DB)
	if err != nil {
		return nil, err
	}

	database, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.DB.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
		}
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	if cfg.DB.AutoMigrate {
		if err := Migrate(database); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("driver", cfg.DB.Driver).
		Bool("migrated", cfg.DB.AutoMigrate).
		Msg("database connection established")
	return database, nil
}

// Open wraps gorm.Open with the settings shared by the service and tests.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}
	return database, nil
}

func newDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// IsPostgres reports whether row locks and postgres-only SQL are available.
func IsPostgres(database *gorm.DB) bool {
	return database.Dialector.Name() == "postgres"
}
