package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresTransactionStore struct {
	db DBTX
}

func NewTransactionStore(db DBTX) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func (s *PostgresTransactionStore) Save(ctx context.Context, txn *models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, source_card_id, destination_card_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		txn.ID, txn.SourceCardID, txn.DestinationCardID, txn.Amount, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", txn.ID, translateError(err))
	}
	return nil
}

func (s *PostgresTransactionStore) SumAmountForSourceInWindow(ctx context.Context, cardID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE source_card_id = $1 AND created_at >= $2 AND created_at < $3`,
		cardID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum outgoing amount for card %s: %w", cardID, translateError(err))
	}
	return total, nil
}

func (s *PostgresTransactionStore) ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_card_id, destination_card_id, amount, created_at
		FROM transactions
		WHERE source_card_id = $1 OR destination_card_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, cardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transactions for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.SourceCardID, &txn.DestinationCardID, &txn.Amount, &txn.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, &txn)
	}
	return transactions, rows.Err()
}
