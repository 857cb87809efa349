// Package database opens the document store the repositories run against.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"findlost/internal/config"
	"findlost/internal/middleware"
	"findlost/internal/models"
	"findlost/internal/observability"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Handle is the open store. Exactly one of SQL and Mongo is set.
type Handle struct {
	Driver string
	SQL    *gorm.DB
	Mongo  *mongo.Database
}

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed and slow statements. Not-found and duplicate-key errors
// are expected outcomes of the repositories and stay quiet.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: &CustomGormLogger{
			logger: middleware.Logger,
			Config: logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		},
		TranslateError: true,
	}
}

// Open connects to the store selected by cfg.StoreDriver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (*Handle, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(cfg)
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func postgresDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)
}

func openPostgres(cfg *config.Config) (*Handle, error) {
	db, err := gorm.Open(postgres.Open(postgresDSN(cfg)), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	middleware.Logger.Info("Database connected successfully", slog.String("driver", config.DriverPostgres))
	return NewGormHandle(config.DriverPostgres, db)
}

// OpenSQLite opens a SQLite database. A single connection serializes writers,
// and ":memory:" databases would otherwise differ per pooled connection.
func OpenSQLite(path string) (*Handle, error) {
	db, err := gorm.Open(sqlite.Open(path), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewGormHandle(config.DriverSQLite, db)
}

// NewGormHandle migrates db and wraps it in a Handle.
func NewGormHandle(driver string, db *gorm.DB) (*Handle, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Item{}, &models.RecoveredItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := observability.RegisterGormMetrics(db); err != nil {
		return nil, fmt.Errorf("failed to register query metrics: %w", err)
	}
	middleware.Logger.Info("Database migration completed", slog.String("driver", driver))
	return &Handle{Driver: driver, SQL: db}, nil
}

// Ping checks that the store is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	if h.Mongo != nil {
		return h.Mongo.Client().Ping(ctx, nil)
	}
	sqlDB, err := h.SQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the store connections.
func (h *Handle) Close(ctx context.Context) error {
	if h.Mongo != nil {
		return h.Mongo.Client().Disconnect(ctx)
	}
	sqlDB, err := h.SQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
