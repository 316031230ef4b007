package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"gearlog/internal/domain"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     logger.LogLevel
}

func DefaultOptions() Options {
	return Options{
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		LogLevel:     logger.Warn,
	}
}

// Connect opens the store named by dsn: postgres:// and postgresql:// URLs
// use PostgreSQL, mysql:// uses MySQL, anything else is a SQLite path.
func Connect(dsn string, opts Options, log *zap.Logger) (*gorm.DB, error) {
	dialector, kind, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	log.Info("connecting to database", zap.String("driver", kind))

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kind, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := opts.MaxOpenConns
	lifetime := time.Hour
	if kind == "sqlite" && strings.Contains(dsn, ":memory:") {
		// every new connection would see its own empty in-memory database
		maxOpen = 1
		lifetime = 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(max(1, min(opts.MaxIdleConns, maxOpen)))
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres", nil
	case strings.HasPrefix(dsn, "mysql://"):
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return nil, "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return gormmysql.Open(cfg.FormatDSN()), "mysql", nil
	default:
		return gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        sqliteDSN(dsn),
		}), "sqlite", nil
	}
}

// sqliteDSN turns on foreign keys for every pooled connection. The driver
// runs _pragma parameters each time it opens one.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Migrate creates or updates the schema. Parents are listed before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Equipment{},
		&domain.RetailerLink{},
	)
}

// Ping checks that the database answers within two seconds.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
