package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/shopspring/decimal"
)

// memoryDB is a store with real exclusive per-card locks, used to exercise the orchestrator
// under concurrency without a database. Writes become visible on commit only.
type memoryDB struct {
	mu           sync.Mutex
	cards        map[uuid.UUID]models.Card
	transactions []models.Transaction
	locks        map[uuid.UUID]chan struct{}
	lockWait     time.Duration

	saveTransactionErr error
}

func newMemoryDB(cards ...*models.Card) *memoryDB {
	db := &memoryDB{
		cards:    make(map[uuid.UUID]models.Card),
		locks:    make(map[uuid.UUID]chan struct{}),
		lockWait: 2 * time.Second,
	}
	for _, card := range cards {
		db.cards[card.ID] = *card
	}
	return db
}

func (db *memoryDB) card(id uuid.UUID) models.Card {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.cards[id]
}

func (db *memoryDB) addTransaction(txn models.Transaction) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.transactions = append(db.transactions, txn)
}

func (db *memoryDB) transactionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.transactions)
}

func (db *memoryDB) lockFor(id uuid.UUID) chan struct{} {
	db.mu.Lock()
	defer db.mu.Unlock()
	ch, ok := db.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		db.locks[id] = ch
	}
	return ch
}

func (db *memoryDB) Do(ctx context.Context, fn func(store.Stores) error) error {
	tx := &memoryTx{
		db:       db,
		held:     make(map[uuid.UUID]chan struct{}),
		pending:  make(map[uuid.UUID]models.Card),
		statuses: make(map[uuid.UUID]models.CardStatus),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	db       *memoryDB
	held     map[uuid.UUID]chan struct{}
	pending  map[uuid.UUID]models.Card
	statuses map[uuid.UUID]models.CardStatus
	txns     []models.Transaction
}

func (tx *memoryTx) Cards() store.CardStore               { return (*memoryCards)(tx) }
func (tx *memoryTx) Transactions() store.TransactionStore { return (*memoryTransactions)(tx) }

func (tx *memoryTx) release() {
	for _, ch := range tx.held {
		<-ch
	}
}

func (tx *memoryTx) commit() {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for id, card := range tx.pending {
		tx.db.cards[id] = card
	}
	for id, status := range tx.statuses {
		card := tx.db.cards[id]
		card.Status = status
		tx.db.cards[id] = card
	}
	tx.db.transactions = append(tx.db.transactions, tx.txns...)
}

func (tx *memoryTx) read(id uuid.UUID) (*models.Card, bool) {
	if card, ok := tx.pending[id]; ok {
		return &card, true
	}
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	card, ok := tx.db.cards[id]
	return &card, ok
}

type memoryCards memoryTx

func (c *memoryCards) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	tx := (*memoryTx)(c)
	if _, ok := tx.read(id); !ok {
		return nil, store.ErrCardNotFound
	}

	if _, held := tx.held[id]; !held {
		ch := tx.db.lockFor(id)
		select {
		case ch <- struct{}{}:
			tx.held[id] = ch
		case <-time.After(tx.db.lockWait):
			return nil, store.ErrLockTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	card, _ := tx.read(id)
	return card, nil
}

func (c *memoryCards) Get(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	card, ok := (*memoryTx)(c).read(id)
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

func (c *memoryCards) Save(ctx context.Context, card *models.Card) error {
	tx := (*memoryTx)(c)
	if _, ok := tx.read(card.ID); !ok {
		return store.ErrCardNotFound
	}
	tx.pending[card.ID] = *card
	return nil
}

func (c *memoryCards) FindExpired(ctx context.Context, asOf time.Time, excluding models.CardStatus) ([]*models.Card, error) {
	db := (*memoryTx)(c).db
	db.mu.Lock()
	defer db.mu.Unlock()

	var cards []*models.Card
	for _, card := range db.cards {
		if card.ExpiresAt.Before(asOf) && card.Status != excluding {
			card := card
			cards = append(cards, &card)
		}
	}
	return cards, nil
}

func (c *memoryCards) SaveStatuses(ctx context.Context, cards []*models.Card) error {
	tx := (*memoryTx)(c)
	for _, card := range cards {
		tx.statuses[card.ID] = card.Status
	}
	return nil
}

type memoryTransactions memoryTx

func (t *memoryTransactions) Save(ctx context.Context, txn *models.Transaction) error {
	tx := (*memoryTx)(t)
	if tx.db.saveTransactionErr != nil {
		return tx.db.saveTransactionErr
	}
	tx.txns = append(tx.txns, *txn)
	return nil
}

func (t *memoryTransactions) SumAmountForSourceInWindow(ctx context.Context, cardID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	tx := (*memoryTx)(t)
	tx.db.mu.Lock()
	all := append(append([]models.Transaction(nil), tx.db.transactions...), tx.txns...)
	tx.db.mu.Unlock()

	total := decimal.Zero
	for _, txn := range all {
		if txn.SourceCardID == cardID && !txn.CreatedAt.Before(start) && txn.CreatedAt.Before(end) {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

func (t *memoryTransactions) ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	db := (*memoryTx)(t).db
	db.mu.Lock()
	defer db.mu.Unlock()

	var matched []*models.Transaction
	for _, txn := range db.transactions {
		if txn.SourceCardID == cardID || txn.DestinationCardID == cardID {
			txn := txn
			matched = append(matched, &txn)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func newTestCard(owner uuid.UUID, balance, limit string) *models.Card {
	return &models.Card{
		ID:         uuid.New(),
		Number:     "4000" + uuid.NewString()[:12],
		OwnerID:    owner,
		ExpiresAt:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.CardStatusActive,
		Balance:    decimal.RequireFromString(balance),
		DailyLimit: decimal.RequireFromString(limit),
	}
}
