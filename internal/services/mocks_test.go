package services

import (
	"context"

	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockTransferPublisher struct {
	mock.Mock
}

func (m *MockTransferPublisher) PublishTransfer(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

type MockSweepLock struct {
	mock.Mock
}

func (m *MockSweepLock) TryAcquire(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSweepLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
