package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Not-found errors.
var (
	ErrCardNotFound            = errors.New("there is no such card")
	ErrSourceCardNotFound      = errors.New("there is no such source card")
	ErrDestinationCardNotFound = errors.New("there is no such destination card")
)

// Transfer rejections, in the order the validator checks them.
var (
	ErrSourceCardInactive      = errors.New("source card is not active or expired")
	ErrDestinationCardInactive = errors.New("destination card is not active or expired")
	ErrSameCard                = errors.New("source and destination card must be different")
	ErrCrossOwnerTransfer      = errors.New("only same-owner transactions are allowed")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrDailyLimitExceeded      = errors.New("daily limit exceeded")
)

// Request errors.
var (
	ErrInvalidAmount         = errors.New("transfer amount must be greater than zero")
	ErrInvalidLimit          = errors.New("daily limit must not be negative")
	ErrInvalidStatus         = errors.New("unknown card status")
	ErrExpiredCardTransition = errors.New("expired card status cannot be changed")
)

// Retryable conditions.
var (
	ErrCardLocked     = errors.New("card is being used by another operation, try again")
	ErrTransferFailed = errors.New("transfer failed, please retry")
)

// DailyLimitError reports the limit and the amount already sent today.
type DailyLimitError struct {
	Limit      decimal.Decimal
	SpentToday decimal.Decimal
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily limit exceeded: source card has a limit per one day of %s, spent today %s",
		e.Limit.StringFixed(2), e.SpentToday.StringFixed(2))
}

func (e *DailyLimitError) Is(target error) bool {
	return target == ErrDailyLimitExceeded
}

// FailedError hides an infrastructure failure behind ErrTransferFailed while keeping the cause
// reachable through errors.Is and errors.As.
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string {
	return ErrTransferFailed.Error()
}

func (e *FailedError) Unwrap() []error {
	return []error{ErrTransferFailed, e.Err}
}

var rejections = []error{
	ErrSourceCardInactive,
	ErrDestinationCardInactive,
	ErrSameCard,
	ErrCrossOwnerTransfer,
	ErrInsufficientFunds,
	ErrDailyLimitExceeded,
}

// IsRejection reports whether err is one of the business rule rejections.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a card that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrSourceCardNotFound) ||
		errors.Is(err, ErrDestinationCardNotFound)
}

// IsRetryable reports whether the same request may succeed if repeated later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCardLocked) || errors.Is(err, ErrTransferFailed)
}
