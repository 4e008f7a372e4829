package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for balances, limits and amounts.
const MoneyScale = 2

// RoundMoney normalizes an amount to MoneyScale places, rounding half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Transaction represents an executed transfer between two cards
type Transaction struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	SourceCardID      uuid.UUID       `json:"source_card_id" db:"source_card_id"`
	DestinationCardID uuid.UUID       `json:"destination_card_id" db:"destination_card_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
