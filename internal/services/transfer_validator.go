package services

import (
	"context"
	"fmt"

	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/shopspring/decimal"
)

// LockedPair carries the two locked card snapshots from validation to execution.
type LockedPair struct {
	Source      *models.Card
	Destination *models.Card
}

// TransferValidator decides whether a transfer between two locked cards may proceed.
// It never mutates the cards.
type TransferValidator struct {
	clock Clock
}

func NewTransferValidator(clock Clock) *TransferValidator {
	return &TransferValidator{clock: clock}
}

// Validate runs the checks in order and returns the first failure. On success the same
// card references are returned for the executor.
func (v *TransferValidator) Validate(ctx context.Context, transactions store.TransactionStore, source, destination *models.Card, amount decimal.Decimal) (*LockedPair, error) {
	if !source.IsActive() {
		return nil, ErrSourceCardInactive
	}
	if !destination.IsActive() {
		return nil, ErrDestinationCardInactive
	}
	if source.ID == destination.ID {
		return nil, ErrSameCard
	}
	if source.OwnerID != destination.OwnerID {
		return nil, ErrCrossOwnerTransfer
	}
	if source.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	start, end := DayWindow(v.clock.Now())
	spentToday, err := transactions.SumAmountForSourceInWindow(ctx, source.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily spending for card %s: %w", source.ID, err)
	}
	if spentToday.Add(amount).GreaterThan(source.DailyLimit) {
		return nil, &DailyLimitError{Limit: source.DailyLimit, SpentToday: spentToday}
	}

	return &LockedPair{Source: source, Destination: destination}, nil
}
