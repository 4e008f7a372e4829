package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/cardtransfer/internal/models"
)

// TransferPublisher announces committed transfers. It is called after commit, outside any lock.
type TransferPublisher interface {
	PublishTransfer(ctx context.Context, txn *models.Transaction) error
}

// TransferEvent is the queued representation of a committed transfer.
type TransferEvent struct {
	TransactionID     string    `json:"transaction_id"`
	SourceCardID      string    `json:"source_card_id"`
	DestinationCardID string    `json:"destination_card_id"`
	Amount            string    `json:"amount"`
	ExecutedAt        time.Time `json:"executed_at"`
}

type RedisTransferPublisher struct {
	redis *redis.Client
	queue string
}

func NewRedisTransferPublisher(client *redis.Client, queue string) *RedisTransferPublisher {
	return &RedisTransferPublisher{redis: client, queue: queue}
}

func (p *RedisTransferPublisher) PublishTransfer(ctx context.Context, txn *models.Transaction) error {
	data, err := json.Marshal(TransferEvent{
		TransactionID:     txn.ID.String(),
		SourceCardID:      txn.SourceCardID.String(),
		DestinationCardID: txn.DestinationCardID.String(),
		Amount:            txn.Amount.StringFixed(2),
		ExecutedAt:        txn.CreatedAt,
	})
	if err != nil {
		return err
	}

	if err := p.redis.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("queue transfer %s: %w", txn.ID, err)
	}
	return nil
}
