package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/shopspring/decimal"
)

// TransferExecutor applies a validated transfer. It must run inside the unit of work that
// holds both card locks and never re-validates.
type TransferExecutor struct {
	clock Clock
}

func NewTransferExecutor(clock Clock) *TransferExecutor {
	return &TransferExecutor{clock: clock}
}

func (e *TransferExecutor) Execute(ctx context.Context, stores store.Stores, pair *LockedPair, amount decimal.Decimal) (*models.Transaction, error) {
	source, destination := pair.Source, pair.Destination

	source.Balance = models.RoundMoney(source.Balance.Sub(amount))
	destination.Balance = models.RoundMoney(destination.Balance.Add(amount))

	if err := stores.Cards().Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source card: %w", err)
	}
	if err := stores.Cards().Save(ctx, destination); err != nil {
		return nil, fmt.Errorf("save destination card: %w", err)
	}

	txn := &models.Transaction{
		ID:                uuid.New(),
		SourceCardID:      source.ID,
		DestinationCardID: destination.ID,
		Amount:            amount,
		CreatedAt:         e.clock.Now(),
	}
	if err := stores.Transactions().Save(ctx, txn); err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	return txn, nil
}
