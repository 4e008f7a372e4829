package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ruralpay/cardtransfer/internal/middleware"
	"github.com/ruralpay/cardtransfer/internal/services"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1_048_576

var errSingleObject = errors.New("Request body must only contain a single JSON object")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errSingleObject
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
	}
	return userID, ok
}

// writeServiceError maps service errors onto HTTP responses. Business reasons are returned
// verbatim; unexpected errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case services.IsNotFound(err):
		services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case services.IsRejection(err):
		services.SendErrorResponse(w, err.Error(), http.StatusUnprocessableEntity, nil)
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidLimit),
		errors.Is(err, services.ErrInvalidStatus):
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, services.ErrExpiredCardTransition):
		services.SendErrorResponse(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, services.ErrCardLocked):
		w.Header().Set("Retry-After", "1")
		services.SendErrorResponse(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, services.ErrTransferFailed):
		w.Header().Set("Retry-After", "5")
		services.SendErrorResponse(w, services.ErrTransferFailed.Error(), http.StatusServiceUnavailable, nil)
	default:
		log.WithError(err).Error("[HTTP] request failed")
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}
