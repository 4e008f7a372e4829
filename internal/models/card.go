package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardStatus represents card status
type CardStatus string

const (
	CardStatusActive  CardStatus = "active"
	CardStatusBlocked CardStatus = "blocked"
	CardStatusExpired CardStatus = "expired"
)

// ParseCardStatus converts a stored or requested status into a CardStatus
func ParseCardStatus(s string) (CardStatus, error) {
	switch status := CardStatus(s); status {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return status, nil
	default:
		return "", fmt.Errorf("unknown card status %q", s)
	}
}

// IsTerminal reports whether no transition may leave the status.
func (s CardStatus) IsTerminal() bool {
	return s == CardStatusExpired
}

// CanTransitionTo reports whether a status update from s to next is allowed.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	if s.IsTerminal() {
		return next == s
	}
	switch next {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

// Card represents an issued payment card
type Card struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Number     string          `json:"number" db:"number"`
	OwnerID    uuid.UUID       `json:"owner_id" db:"owner_id"`
	ExpiresAt  time.Time       `json:"expires_at" db:"expires_at"`
	Status     CardStatus      `json:"status" db:"status"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	DailyLimit decimal.Decimal `json:"daily_limit" db:"daily_limit"`
}

// IsActive reports whether the card may take part in a transfer.
func (c *Card) IsActive() bool {
	return c.Status == CardStatusActive
}
