package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/salescrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the gorm connection shared by every repository
type Database struct {
	DB *gorm.DB
}

type openOptions struct {
	logger   logger.Interface
	timeZone string
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

// OpenOption configures Open
type OpenOption func(*openOptions)

// WithGormLogger routes statements through l instead of a silent logger
func WithGormLogger(l logger.Interface) OpenOption {
	return func(o *openOptions) {
		o.logger = l
	}
}

// WithSessionTimeZone sets the PostgreSQL session time zone, so date_trunc and
// now() in dashboard queries follow business time
func WithSessionTimeZone(tz string) OpenOption {
	return func(o *openOptions) {
		o.timeZone = tz
	}
}

// WithConnectRetry retries the initial ping, doubling backoff each time.
// The API container usually starts before PostgreSQL is ready.
func WithConnectRetry(attempts int, backoff time.Duration, log *zap.Logger) OpenOption {
	return func(o *openOptions) {
		o.attempts = attempts
		o.backoff = backoff
		o.log = log
	}
}

// Open connects to PostgreSQL, configures the pool and waits for the server to answer
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	o := openOptions{
		logger:   logger.Default.LogMode(logger.Silent),
		attempts: 1,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	dsn, err := sessionDSN(cfg.DSN(), o.timeZone)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	database := &Database{DB: db}
	if err := database.waitReady(ctx, o); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return database, nil
}

func (d *Database) waitReady(ctx context.Context, o openOptions) error {
	attempts := max(o.attempts, 1)
	backoff := o.backoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = d.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		o.log.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("failed to ping database: %w", err)
}

// sessionDSN adds the timezone runtime parameter to a postgres URL
func sessionDSN(dsn, tz string) (string, error) {
	if tz == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid database DSN: %w", err)
	}
	q := u.Query()
	q.Set("timezone", tz)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PingContext checks the connection. It backs the database health check.
func (d *Database) PingContext(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
