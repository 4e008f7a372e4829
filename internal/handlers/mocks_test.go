package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockTransferer struct {
	mock.Mock
}

func (m *MockTransferer) Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	args := m.Called(ctx, sourceID, destinationID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockCardManager struct {
	mock.Mock
}

func (m *MockCardManager) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardManager) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) (*models.Card, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardManager) UpdateDailyLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) (*models.Card, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardManager) ListTransactions(ctx context.Context, id uuid.UUID, page, size int) ([]*models.Transaction, error) {
	args := m.Called(ctx, id, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
