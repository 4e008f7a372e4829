package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ruralpay/cardtransfer/internal/models"
)

const cardColumns = `id, number, owner_id, expires_at, status, balance, daily_limit`

type PostgresCardStore struct {
	db DBTX
}

func NewCardStore(db DBTX) *PostgresCardStore {
	return &PostgresCardStore{db: db}
}

func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE id = $1
		FOR UPDATE`, id)
	return scanCard(row)
}

func (s *PostgresCardStore) Get(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE id = $1`, id)
	return scanCard(row)
}

func (s *PostgresCardStore) Save(ctx context.Context, card *models.Card) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET status = $1, balance = $2, daily_limit = $3, updated_at = NOW()
		WHERE id = $4`,
		string(card.Status), card.Balance, card.DailyLimit, card.ID)
	if err != nil {
		return fmt.Errorf("update card %s: %w", card.ID, translateError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (s *PostgresCardStore) FindExpired(ctx context.Context, asOf time.Time, excluding models.CardStatus) ([]*models.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE expires_at < $1 AND status <> $2
		ORDER BY expires_at`, asOf, string(excluding))
	if err != nil {
		return nil, fmt.Errorf("query expired cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *PostgresCardStore) SaveStatuses(ctx context.Context, cards []*models.Card) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]string, len(cards))
	statuses := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID.String()
		statuses[i] = string(card.Status)
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE cards AS c
		SET status = u.status, updated_at = NOW()
		FROM unnest($1::uuid[], $2::text[]) AS u(id, status)
		WHERE c.id = u.id`,
		pq.Array(ids), pq.Array(statuses))
	if err != nil {
		return fmt.Errorf("update card statuses: %w", translateError(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*models.Card, error) {
	var card models.Card
	var status string
	err := row.Scan(&card.ID, &card.Number, &card.OwnerID, &card.ExpiresAt, &status, &card.Balance, &card.DailyLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}

	card.Status, err = models.ParseCardStatus(status)
	if err != nil {
		return nil, err
	}
	return &card, nil
}
