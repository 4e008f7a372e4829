package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Transferer is satisfied by *services.TransferService.
type Transferer interface {
	Transfer(ctx context.Context, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error)
}

type TransferHandler struct {
	transfers Transferer
	cards     CardManager
	validator *services.ValidationHelper
	log       *logrus.Logger
}

func NewTransferHandler(transfers Transferer, cards CardManager, log *logrus.Logger) *TransferHandler {
	return &TransferHandler{
		transfers: transfers,
		cards:     cards,
		validator: services.NewValidationHelper(),
		log:       log,
	}
}

type transferRequest struct {
	SourceCardID      string          `json:"sourceCardId" validate:"required,uuid"`
	DestinationCardID string          `json:"destinationCardId" validate:"required,uuid"`
	Amount            decimal.Decimal `json:"amount" validate:"required,gte=1"`
}

type transactionResponse struct {
	ID                string    `json:"id"`
	SourceCardID      string    `json:"sourceCardId"`
	DestinationCardID string    `json:"destinationCardId"`
	Amount            string    `json:"amount"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newTransactionResponse(txn *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:                txn.ID.String(),
		SourceCardID:      txn.SourceCardID.String(),
		DestinationCardID: txn.DestinationCardID.String(),
		Amount:            txn.Amount.StringFixed(2),
		CreatedAt:         txn.CreatedAt,
	}
}

// CreateTransfer moves money between two cards of the caller. The caller must own the
// source card; the same-owner rule for the destination is enforced by the transfer engine.
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errSingleObject) {
			services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	sourceID := uuid.MustParse(req.SourceCardID)
	destinationID := uuid.MustParse(req.DestinationCardID)

	source, err := h.cards.GetCard(r.Context(), sourceID)
	if err != nil {
		if services.IsNotFound(err) {
			err = services.ErrSourceCardNotFound
		}
		writeServiceError(w, h.log, err)
		return
	}
	if source.OwnerID.String() != userID {
		h.log.WithFields(logrus.Fields{"user_id": userID, "card_id": sourceID.String()}).
			Warn("[TRANSFER] transfer from a card the caller does not own")
		services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
		return
	}

	txn, err := h.transfers.Transfer(r.Context(), sourceID, destinationID, req.Amount)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    newTransactionResponse(txn),
	})
}
