package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresUnitOfWork runs each unit in one database transaction. Row lock waits inside
// the transaction are bounded by lockTimeout.
type PostgresUnitOfWork struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func NewUnitOfWork(db *sql.DB, lockTimeout time.Duration) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db, lockTimeout: lockTimeout}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(Stores) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if u.lockTimeout > 0 {
		// SET does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(&txStores{
		cards:        NewCardStore(tx),
		transactions: NewTransactionStore(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", translateError(err))
	}
	return nil
}

type txStores struct {
	cards        *PostgresCardStore
	transactions *PostgresTransactionStore
}

func (s *txStores) Cards() CardStore {
	return s.cards
}

func (s *txStores) Transactions() TransactionStore {
	return s.transactions
}
