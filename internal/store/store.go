package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrCardNotFound is returned when no card row matches the requested id.
	ErrCardNotFound = errors.New("card not found")
	// ErrLockTimeout is returned when a row lock could not be obtained within the wait bound.
	ErrLockTimeout = errors.New("row lock not available")
)

const (
	pqLockNotAvailable = "55P03"
	pqDeadlockDetected = "40P01"
)

// CardStore is the durable record of card balance, status and daily limit.
type CardStore interface {
	// GetForUpdate returns the card with an exclusive lock held until the unit of work ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Card, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Card, error)
	Save(ctx context.Context, card *models.Card) error
	FindExpired(ctx context.Context, asOf time.Time, excluding models.CardStatus) ([]*models.Card, error)
	// SaveStatuses persists the status of every card in one statement.
	SaveStatuses(ctx context.Context, cards []*models.Card) error
}

// TransactionStore is the append-mostly record of executed transfers.
type TransactionStore interface {
	Save(ctx context.Context, txn *models.Transaction) error
	// SumAmountForSourceInWindow returns zero when no rows match.
	SumAmountForSourceInWindow(ctx context.Context, cardID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
}

// Stores gives access to both stores bound to one unit of work.
type Stores interface {
	Cards() CardStore
	Transactions() TransactionStore
}

// UnitOfWork runs fn atomically. Any error returned by fn rolls back every write made
// through the provided stores and releases all row locks.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Stores) error) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// translateError maps driver errors onto store errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqLockNotAvailable, pqDeadlockDetected:
			return errors.Join(ErrLockTimeout, err)
		}
	}
	return err
}
