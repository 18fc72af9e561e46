// Package app wires configuration into concrete components shared by the
// server and the command line tools.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"farmdirect/internal/config"
	"farmdirect/internal/database"
	"farmdirect/internal/storage"
	"farmdirect/internal/storage/mongostore"
	"farmdirect/internal/storage/sqlstore"
)

// CloseFunc releases the connections behind a store.
type CloseFunc func(context.Context) error

// OpenStore connects to the configured backend and prepares its schema or
// indexes.
func OpenStore(ctx context.Context, cfg config.Config, log *zap.Logger) (storage.Storage, CloseFunc, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.New(client, cfg.DBName, mongostore.WithConcurrency(cfg.HydrationConcurrency))
		if err := database.EnsureIndexes(ctx, store.Database(), log); err != nil {
			log.Warn("index setup incomplete", zap.Error(err))
		}
		log.Info("mongodb connected", zap.String("db", cfg.DBName))
		return store, client.Disconnect, nil

	case config.DriverPostgres, config.DriverSQLite:
		opts := database.SQLOptions{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			Logger:          log.Named("gorm"),
		}
		var (
			db  *gorm.DB
			err error
		)
		if cfg.StorageDriver == config.DriverPostgres {
			db, err = database.OpenPostgres(cfg.DatabaseURL, opts)
		} else {
			db, err = database.OpenSQLite(cfg.SQLitePath, opts)
		}
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
		log.Info("sql database ready", zap.String("driver", cfg.StorageDriver))

		closeFn := func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return sqlstore.New(db, sqlstore.WithConcurrency(cfg.HydrationConcurrency)), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
