package postgres

import (
	"context"
	"database/sql"

	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/jmoiron/sqlx"
)

// Tx is the transaction carried in the context by WithTx
type Tx struct {
	*sqlx.Tx
	ID string
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(types.CtxDBTransaction).(*Tx)
	return tx, ok
}

// WithTx runs fn inside a read-committed transaction. A call made while a
// transaction is already in ctx joins it, so the outermost WithTx owns the
// commit or rollback.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := GetTx(ctx); ok {
		db.logger.Debugw("joining transaction", "tx_id", tx.ID)
		return fn(ctx)
	}

	finish, ctx := db.StartSpan(ctx, "postgres.transaction", nil)
	defer finish()

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}
	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	ctx = context.WithValue(ctx, types.CtxDBTransaction, tx)
	db.logger.Debugw("started transaction", "tx_id", tx.ID)

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		db.logger.Errorw("transaction failed", "tx_id", tx.ID, "error", err)
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Errorw("rollback failed", "tx_id", tx.ID, "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}
	db.logger.Debugw("committed transaction", "tx_id", tx.ID)
	return nil
}
