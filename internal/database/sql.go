package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmdirect/internal/models"
)

// sqliteDriverName registers go-sqlite3 with a Unicode aware lower(). The
// built-in one folds ASCII only, so case-insensitive search would miss
// letters like Ä.
const sqliteDriverName = "sqlite3_farmdirect"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type SQLOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	// Logger receives gorm's query errors. Nil means the global zap logger.
	Logger *zap.Logger
}

// gormWriter feeds gorm's logger output into zap.
type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// OpenPostgres connects with pgx in simple-protocol mode and applies pool settings.
func OpenPostgres(dsn string, opts SQLOptions) (*gorm.DB, error) {
	dialector := postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
	return open(dialector, opts)
}

// OpenSQLite opens a file or in-memory database. SQLite serialises writers,
// so the pool is pinned to one connection.
func OpenSQLite(path string, opts SQLOptions) (*gorm.DB, error) {
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return open(sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: path}), opts)
}

func open(dialector gorm.Dialector, opts SQLOptions) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Error
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	// Absence is reported as storage.ErrNotFound; it is not a query failure.
	gormLogger := logger.New(gormWriter{log: opts.Logger.Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  opts.LogLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

// Migrate creates or updates the tables users, farmers, categories, products,
// orders, order_items and reviews.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Farmer{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
