package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/cardtransfer/internal/middleware"
)

// RegisterRoutes mounts the card and transfer endpoints. Authentication is applied by the caller;
// status and limit changes additionally require the admin role.
func RegisterRoutes(r chi.Router, transfers *TransferHandler, cards *CardHandler) {
	r.Post("/transfers", transfers.CreateTransfer)

	r.Route("/cards/{cardId}", func(r chi.Router) {
		r.Get("/", cards.GetCard)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAdmin))
			r.Put("/status", cards.UpdateStatus)
			r.Put("/limit", cards.UpdateDailyLimit)
		})
		r.Get("/transactions", cards.ListTransactions)
	})
}
