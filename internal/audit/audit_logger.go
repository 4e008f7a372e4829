package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	EventTransfer     = "TRANSFER"
	EventRejected     = "TRANSFER_REJECTED"
	EventFailed       = "TRANSFER_FAILED"
	EventStatusChange = "CARD_STATUS_CHANGED"
	EventLimitChange  = "CARD_LIMIT_CHANGED"
	EventExpired      = "CARD_EXPIRED"
)

type AuditLogger struct {
	log *logrus.Logger
}

func NewAuditLogger(log *logrus.Logger) *AuditLogger {
	return &AuditLogger{log: log}
}

func (a *AuditLogger) LogTransfer(txn *models.Transaction) {
	a.entry(EventTransfer, "COMMITTED").WithFields(logrus.Fields{
		"transaction_id":      txn.ID.String(),
		"source_card_id":      txn.SourceCardID.String(),
		"destination_card_id": txn.DestinationCardID.String(),
		"amount":              txn.Amount.StringFixed(2),
		"executed_at":         txn.CreatedAt.Format(time.RFC3339Nano),
	}).Info("AUDIT: transfer committed")
}

// LogRejection records a transfer refused for a business or request reason.
func (a *AuditLogger) LogRejection(sourceID, destinationID uuid.UUID, amount decimal.Decimal, reason error) {
	a.entry(EventRejected, "REJECTED").WithFields(logrus.Fields{
		"source_card_id":      sourceID.String(),
		"destination_card_id": destinationID.String(),
		"amount":              amount.StringFixed(2),
		"reason":              reason.Error(),
	}).Warn("AUDIT: transfer rejected")
}

// LogFailure records a transfer aborted by an infrastructure error or lock contention.
func (a *AuditLogger) LogFailure(sourceID, destinationID uuid.UUID, amount decimal.Decimal, cause error) {
	a.entry(EventFailed, "FAILED").WithFields(logrus.Fields{
		"source_card_id":      sourceID.String(),
		"destination_card_id": destinationID.String(),
		"amount":              amount.StringFixed(2),
		"error":               cause.Error(),
	}).Error("AUDIT: transfer failed")
}

func (a *AuditLogger) LogStatusChange(cardID uuid.UUID, from, to models.CardStatus) {
	a.entry(EventStatusChange, "SUCCESS").WithFields(logrus.Fields{
		"card_id":     cardID.String(),
		"from_status": string(from),
		"to_status":   string(to),
	}).Info("AUDIT: card status changed")
}

func (a *AuditLogger) LogLimitChange(cardID uuid.UUID, from, to decimal.Decimal) {
	a.entry(EventLimitChange, "SUCCESS").WithFields(logrus.Fields{
		"card_id":    cardID.String(),
		"from_limit": from.StringFixed(2),
		"to_limit":   to.StringFixed(2),
	}).Info("AUDIT: card daily limit changed")
}

func (a *AuditLogger) LogExpired(card *models.Card, previous models.CardStatus) {
	a.entry(EventExpired, "SUCCESS").WithFields(logrus.Fields{
		"card_id":     card.ID.String(),
		"expires_at":  card.ExpiresAt.Format(time.RFC3339),
		"from_status": string(previous),
		"to_status":   string(card.Status),
	}).Info("AUDIT: card expired")
}

func (a *AuditLogger) entry(event, status string) *logrus.Entry {
	return a.log.WithFields(logrus.Fields{
		"audit":  true,
		"event":  event,
		"status": status,
	})
}
