package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/audit"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CardService covers the card operations around the transfer path: lookup, status and
// limit updates, and transaction history.
type CardService struct {
	uow   store.UnitOfWork
	audit *audit.AuditLogger
	log   *logrus.Logger
}

func NewCardService(uow store.UnitOfWork, log *logrus.Logger) *CardService {
	return &CardService{
		uow:   uow,
		audit: audit.NewAuditLogger(log),
		log:   log,
	}
}

func (s *CardService) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	var card *models.Card
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		var err error
		card, err = stores.Cards().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return card, nil
}

// UpdateStatus changes the card status under the same row lock transfers take. An expired
// card keeps its status.
func (s *CardService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) (*models.Card, error) {
	if _, err := models.ParseCardStatus(string(status)); err != nil {
		return nil, ErrInvalidStatus
	}

	var card *models.Card
	var previous models.CardStatus
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		var err error
		card, err = stores.Cards().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		previous = card.Status
		if previous == status {
			return nil
		}
		if !previous.CanTransitionTo(status) {
			return ErrExpiredCardTransition
		}

		card.Status = status
		return stores.Cards().Save(ctx, card)
	})
	if err != nil {
		return nil, s.translate(err)
	}

	if previous != status {
		s.audit.LogStatusChange(id, previous, status)
	}
	return card, nil
}

// UpdateDailyLimit sets the per-day outgoing limit. Only a non-negative limit is enforced here.
func (s *CardService) UpdateDailyLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) (*models.Card, error) {
	limit = models.RoundMoney(limit)
	if limit.IsNegative() {
		return nil, ErrInvalidLimit
	}

	var card *models.Card
	var previous decimal.Decimal
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		var err error
		card, err = stores.Cards().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		previous = card.DailyLimit
		card.DailyLimit = limit
		return stores.Cards().Save(ctx, card)
	})
	if err != nil {
		return nil, s.translate(err)
	}

	s.audit.LogLimitChange(id, previous, limit)
	return card, nil
}

// ListTransactions returns the card's transactions as source or destination, newest first.
// page starts at 0.
func (s *CardService) ListTransactions(ctx context.Context, id uuid.UUID, page, size int) ([]*models.Transaction, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var transactions []*models.Transaction
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		if _, err := stores.Cards().Get(ctx, id); err != nil {
			return err
		}

		var err error
		transactions, err = stores.Transactions().ListByCard(ctx, id, size, page*size)
		return err
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return transactions, nil
}

func (s *CardService) translate(err error) error {
	switch {
	case errors.Is(err, store.ErrCardNotFound):
		return ErrCardNotFound
	case errors.Is(err, store.ErrLockTimeout):
		return ErrCardLocked
	case errors.Is(err, ErrExpiredCardTransition):
		return err
	default:
		s.log.WithError(err).Error("[CARDS] card operation failed")
		return fmt.Errorf("card operation: %w", err)
	}
}
