package db

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	pgstore "github.com/fatflowers/gymdesk/internal/app/storage/postgres"
	"github.com/fatflowers/gymdesk/internal/models"
	cfgpkg "github.com/fatflowers/gymdesk/pkg/config"
	gormzap "github.com/fatflowers/gymdesk/pkg/gormlog"
)

// NewDB opens the postgres pool. It returns nil without error when the
// memory driver is configured.
func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.Driver != cfgpkg.DBDriverPostgres {
		return nil, nil
	}
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         gormzap.New(l, gormzap.DefaultSlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	l.Infow("connected to postgres via DSN",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)
	return db, nil
}

// NewStore picks the storage backend for the configured driver.
func NewStore(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) (storage.Store, error) {
	switch cfg.Database.Driver {
	case cfgpkg.DBDriverMemory:
		l.Warnw("using in-memory store; data is lost on restart")
		return memory.New(), nil
	case cfgpkg.DBDriverPostgres:
		if db == nil {
			return nil, gorm.ErrInvalidDB
		}
		return pgstore.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Provide(NewStore),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
