package services

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/audit"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransferService is the entry point for moving money between two cards.
type TransferService struct {
	uow       store.UnitOfWork
	validator *TransferValidator
	executor  *TransferExecutor
	publisher TransferPublisher
	audit     *audit.AuditLogger
	log       *logrus.Logger
}

// NewTransferService wires the orchestrator. publisher may be nil.
func NewTransferService(uow store.UnitOfWork, clock Clock, publisher TransferPublisher, log *logrus.Logger) *TransferService {
	return &TransferService{
		uow:       uow,
		validator: NewTransferValidator(clock),
		executor:  NewTransferExecutor(clock),
		publisher: publisher,
		audit:     audit.NewAuditLogger(log),
		log:       log,
	}
}

// Transfer moves amount from the source card to the destination card. Both cards are locked in
// ascending id order for the whole unit of work. Rejections are returned verbatim; lock
// contention yields ErrCardLocked and any other failure a *FailedError.
func (s *TransferService) Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	amount = models.RoundMoney(amount)
	if !amount.IsPositive() {
		s.audit.LogRejection(sourceID, destinationID, amount, ErrInvalidAmount)
		return nil, ErrInvalidAmount
	}

	var txn *models.Transaction
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		source, destination, err := lockPair(ctx, stores.Cards(), sourceID, destinationID)
		if err != nil {
			return err
		}

		pair, err := s.validator.Validate(ctx, stores.Transactions(), source, destination, amount)
		if err != nil {
			return err
		}

		txn, err = s.executor.Execute(ctx, stores, pair, amount)
		return err
	})
	if err != nil {
		return nil, s.classify(sourceID, destinationID, amount, err)
	}

	s.audit.LogTransfer(txn)
	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID.String(),
		"amount":         txn.Amount.StringFixed(2),
	}).Info("[TRANSFER] committed")

	if s.publisher != nil {
		if err := s.publisher.PublishTransfer(ctx, txn); err != nil {
			s.log.WithError(err).WithField("transaction_id", txn.ID.String()).
				Warn("[TRANSFER] failed to queue transfer event")
		}
	}

	return txn, nil
}

func (s *TransferService) classify(sourceID, destinationID uuid.UUID, amount decimal.Decimal, err error) error {
	switch {
	case IsRejection(err), IsNotFound(err):
		s.audit.LogRejection(sourceID, destinationID, amount, err)
		return err
	case errors.Is(err, store.ErrLockTimeout):
		s.audit.LogFailure(sourceID, destinationID, amount, err)
		return ErrCardLocked
	default:
		s.audit.LogFailure(sourceID, destinationID, amount, err)
		return &FailedError{Err: err}
	}
}

// lockPair takes both row locks in ascending id order. A transfer to the same id takes the
// lock once and returns the same snapshot twice.
func lockPair(ctx context.Context, cards store.CardStore, sourceID, destinationID uuid.UUID) (*models.Card, *models.Card, error) {
	if sourceID == destinationID {
		card, err := lockCard(ctx, cards, sourceID, ErrSourceCardNotFound)
		if err != nil {
			return nil, nil, err
		}
		return card, card, nil
	}

	if bytes.Compare(sourceID[:], destinationID[:]) < 0 {
		source, err := lockCard(ctx, cards, sourceID, ErrSourceCardNotFound)
		if err != nil {
			return nil, nil, err
		}
		destination, err := lockCard(ctx, cards, destinationID, ErrDestinationCardNotFound)
		if err != nil {
			return nil, nil, err
		}
		return source, destination, nil
	}

	destination, err := lockCard(ctx, cards, destinationID, ErrDestinationCardNotFound)
	if errors.Is(err, ErrDestinationCardNotFound) {
		// A missing source is reported first whatever the lock order.
		if _, getErr := cards.Get(ctx, sourceID); errors.Is(getErr, store.ErrCardNotFound) {
			return nil, nil, ErrSourceCardNotFound
		}
	}
	if err != nil {
		return nil, nil, err
	}
	source, err := lockCard(ctx, cards, sourceID, ErrSourceCardNotFound)
	if err != nil {
		return nil, nil, err
	}
	return source, destination, nil
}

func lockCard(ctx context.Context, cards store.CardStore, id uuid.UUID, notFound error) (*models.Card, error) {
	card, err := cards.GetForUpdate(ctx, id)
	if errors.Is(err, store.ErrCardNotFound) {
		return nil, notFound
	}
	return card, err
}
