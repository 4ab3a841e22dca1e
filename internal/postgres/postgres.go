package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/sentry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB to provide transaction management
type DB struct {
	*sqlx.DB
	logger *logger.Logger
	sentry *sentry.Service
}

// Querier interface defines all database operations
// Both *sqlx.DB and *sqlx.Tx implement these methods
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// NewDB opens the connection pool described by the postgres config
func NewDB(cfg *config.Configuration, logger *logger.Logger, sentrySvc *sentry.Service) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	}
	if cfg.Postgres.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}
	if cfg.Postgres.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return NewFromSqlx(db, logger, sentrySvc), nil
}

// NewFromSqlx wraps an existing connection, e.g. a sqlmock one in tests
func NewFromSqlx(db *sqlx.DB, logger *logger.Logger, sentrySvc *sentry.Service) *DB {
	return &DB{DB: db, logger: logger, sentry: sentrySvc}
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}

// GetQuerier returns either the transaction from context or the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return NewTracedQuerier(tx.Tx, db.logger, tx.ID)
	}
	return NewTracedQuerier(db.DB, db.logger, "")
}

// StartSpan starts a Sentry span for a repository operation
func (db *DB) StartSpan(ctx context.Context, operation string, params map[string]interface{}) (func(), context.Context) {
	span, spanCtx := db.sentry.StartDBSpan(ctx, operation, params)
	return func() { sentry.FinishSpan(span) }, spanCtx
}
