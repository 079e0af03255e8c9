package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"storefront/config"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New connects to the primary and any replicas. On start it pings, applies pending
// migrations when enabled and starts the pool monitor.
func New(params Params) (*gorm.DB, error) {
	dbCfg := params.Config.Database
	if dbCfg == nil {
		dbCfg = &config.DatabaseConfig{}
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Multi-statement writes go through TransactionManager.Execute.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config.Env.Debug, dbCfg.SlowQueryThreshold),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitor := newPoolMonitor(params.Logger, dbCfg.PoolWaitWarnThreshold)
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if params.Config.Migration != nil && params.Config.Migration.AutoRun {
				if err := RunMigrations(startCtx, db, params.Logger); err != nil {
					return errors.Wrap(err, "failed to run migrations")
				}
			}

			go monitor.run(monitorCtx, sqlDB, dbCfg.PoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return errors.WithStack(sqlDB.Close())
		},
	})

	return db, nil
}

const (
	defaultPoolMonitorInterval = 5 * time.Second
	defaultPoolWarnThreshold   = 50 * time.Millisecond
)

// poolMonitor reports connection waits between two samples of sql.DBStats.
// Checkout bursts show up here before they show up as request latency.
type poolMonitor struct {
	logger        *slog.Logger
	warnThreshold time.Duration
	prev          sql.DBStats
}

func newPoolMonitor(logger *slog.Logger, warnThreshold time.Duration) *poolMonitor {
	if warnThreshold <= 0 {
		warnThreshold = defaultPoolWarnThreshold
	}
	if logger != nil {
		logger = logger.With(slog.String("component", "postgres-pool"))
	}

	return &poolMonitor{logger: logger, warnThreshold: warnThreshold}
}

func (m *poolMonitor) run(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	if m.logger == nil || sqlDB == nil {
		return
	}
	if interval <= 0 {
		interval = defaultPoolMonitorInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.prev = sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.observe(ctx, sqlDB.Stats())
		}
	}
}

// observe logs when callers waited for a connection since the previous sample.
func (m *poolMonitor) observe(ctx context.Context, cur sql.DBStats) {
	waits := cur.WaitCount - m.prev.WaitCount
	waited := cur.WaitDuration - m.prev.WaitDuration
	m.prev = cur

	if waits <= 0 {
		return
	}

	level := slog.LevelDebug
	if waited >= m.warnThreshold {
		level = slog.LevelWarn
	}

	m.logger.LogAttrs(ctx, level, "Postgres pool wait",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
	)
}
