package pgxrepo

import (
	"context"
	"fmt"

	"geozone-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager runs zone writes in READ COMMITTED transactions that
// first take a transaction-scoped advisory lock. Every writer waits on the
// same key, so the overlap check and the insert see a zone set no other
// writer can change until commit.
type TransactionManager struct {
	db      *pgxpool.Pool
	lockKey int64
}

func NewTransactionManager(db *pgxpool.Pool, lockKey int64) domain.TransactionManager {
	return &TransactionManager{db: db, lockKey: lockKey}
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, tm.lockKey); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("acquire zone lock: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txKey struct{}

// dbFromContext returns the transaction stored by Do, or fallback.
func dbFromContext(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}
