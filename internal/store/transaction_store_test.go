package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	txn := &models.Transaction{
		ID:                uuid.New(),
		SourceCardID:      uuid.New(),
		DestinationCardID: uuid.New(),
		Amount:            decimal.RequireFromString("780.00"),
		CreatedAt:         time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO transactions \\(id, source_card_id, destination_card_id, amount, created_at\\)").
		WithArgs(txn.ID, txn.SourceCardID, txn.DestinationCardID, txn.Amount, txn.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, NewTransactionStore(db).Save(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionStore_SumAmountForSourceInWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewTransactionStore(db)
	cardID := uuid.New()
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	t.Run("sums outgoing amounts", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM transactions WHERE source_card_id = \\$1 AND created_at >= \\$2 AND created_at < \\$3").
			WithArgs(cardID, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("200.00"))

		total, err := store.SumAmountForSourceInWindow(context.Background(), cardID, start, end)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("200").Equal(total))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero when nothing was sent", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(cardID, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))

		total, err := store.SumAmountForSourceInWindow(context.Background(), cardID, start, end)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(cardID, start, end).
			WillReturnError(assert.AnError)

		_, err := store.SumAmountForSourceInWindow(context.Background(), cardID, start, end)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionStore_ListByCard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cardID := uuid.New()
	other := uuid.New()
	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, source_card_id, destination_card_id, amount, created_at FROM transactions WHERE source_card_id = \\$1 OR destination_card_id = \\$1 ORDER BY created_at DESC, id LIMIT \\$2 OFFSET \\$3").
		WithArgs(cardID, 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_card_id", "destination_card_id", "amount", "created_at"}).
			AddRow(uuid.NewString(), cardID.String(), other.String(), "10.50", now).
			AddRow(uuid.NewString(), other.String(), cardID.String(), "3.00", now.Add(-time.Hour)))

	transactions, err := NewTransactionStore(db).ListByCard(context.Background(), cardID, 20, 40)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, cardID, transactions[0].SourceCardID)
	assert.Equal(t, cardID, transactions[1].DestinationCardID)
	assert.Equal(t, other, transactions[1].SourceCardID)
	assert.True(t, decimal.RequireFromString("10.5").Equal(transactions[0].Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}
