package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type Config struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	DSN    string
	// SlowThreshold controls gorm's slow query warnings.
	SlowThreshold time.Duration
}

func ConfigFromEnv() Config {
	cfg := Config{
		Driver:        strings.ToLower(envutil.String("DB_DRIVER", "postgres")),
		DSN:           envutil.String("DATABASE_URL", ""),
		SlowThreshold: envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
	}
	if cfg.DSN == "" && cfg.Driver == "postgres" {
		cfg.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_NAME", "mentalgym"),
		)
	}
	if cfg.DSN == "" && cfg.Driver == "sqlite" {
		cfg.DSN = "mentalgym.db"
	}
	return cfg
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func Open(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "driver", cfg.Driver)

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// One writer keeps SQLite's single-writer lock from surfacing as SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	serviceLog.Info("Database connected")
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
