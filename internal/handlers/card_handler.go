package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/middleware"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CardManager is satisfied by *services.CardService.
type CardManager interface {
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CardStatus) (*models.Card, error)
	UpdateDailyLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) (*models.Card, error)
	ListTransactions(ctx context.Context, id uuid.UUID, page, size int) ([]*models.Transaction, error)
}

type CardHandler struct {
	cards     CardManager
	validator *services.ValidationHelper
	log       *logrus.Logger
}

func NewCardHandler(cards CardManager, log *logrus.Logger) *CardHandler {
	return &CardHandler{
		cards:     cards,
		validator: services.NewValidationHelper(),
		log:       log,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active blocked expired"`
}

type updateLimitRequest struct {
	DailyLimit decimal.Decimal `json:"dailyLimit" validate:"gte=100"`
}

type cardResponse struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	OwnerID    string    `json:"ownerId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Status     string    `json:"status"`
	Balance    string    `json:"balance"`
	DailyLimit string    `json:"dailyLimit"`
}

func newCardResponse(card *models.Card) cardResponse {
	return cardResponse{
		ID:         card.ID.String(),
		Number:     maskNumber(card.Number),
		OwnerID:    card.OwnerID.String(),
		ExpiresAt:  card.ExpiresAt,
		Status:     string(card.Status),
		Balance:    card.Balance.StringFixed(2),
		DailyLimit: card.DailyLimit.StringFixed(2),
	}
}

func maskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "**** **** **** " + number[len(number)-4:]
}

func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    newCardResponse(card),
	})
}

// UpdateStatus is mounted behind the admin role.
func (h *CardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	updated, err := h.cards.UpdateStatus(r.Context(), cardID, models.CardStatus(req.Status))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    newCardResponse(updated),
	})
}

// UpdateDailyLimit is mounted behind the admin role.
func (h *CardHandler) UpdateDailyLimit(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req updateLimitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	updated, err := h.cards.UpdateDailyLimit(r.Context(), cardID, req.DailyLimit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    newCardResponse(updated),
	})
}

func (h *CardHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", 0)
	if err != nil || page < 0 {
		services.SendErrorResponse(w, "page must be a non-negative integer", http.StatusBadRequest, nil)
		return
	}
	size, err := queryInt(r, "size", services.DefaultPageSize)
	if err != nil || size <= 0 || size > services.MaxPageSize {
		services.SendErrorResponse(w, "size must be between 1 and 100", http.StatusBadRequest, nil)
		return
	}

	transactions, err := h.cards.ListTransactions(r.Context(), card.ID, page, size)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	data := make([]transactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		data = append(data, newTransactionResponse(txn))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"page":    page,
		"size":    size,
	})
}

// ownedCard loads the card named in the path and checks the caller owns it or is an admin.
func (h *CardHandler) ownedCard(w http.ResponseWriter, r *http.Request) (*models.Card, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}

	cardID, ok := cardIDParam(w, r)
	if !ok {
		return nil, false
	}

	card, err := h.cards.GetCard(r.Context(), cardID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return nil, false
	}
	if card.OwnerID.String() != userID && !middleware.HasRole(r.Context(), middleware.RoleAdmin) {
		services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
		return nil, false
	}
	return card, true
}

func cardIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cardID, err := uuid.Parse(chi.URLParam(r, "cardId"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid card id", http.StatusBadRequest, nil)
		return uuid.Nil, false
	}
	return cardID, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
