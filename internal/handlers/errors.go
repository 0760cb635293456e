package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/handlers/identityctx"
	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
)

type insufficientBalance struct {
	WalletID  string `json:"walletId"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

// renderError maps service error to response
// Client errors carry the error text, anything unexpected is logged and hidden
func renderError(w http.ResponseWriter, err error, l logger.Logger) {
	var insufficient *apperrors.InsufficientBalanceError

	switch {
	case errors.As(err, &insufficient):
		render.ServiceErrorWithData(w, err.Error(), http.StatusUnprocessableEntity, insufficientBalance{
			WalletID:  insufficient.WalletID.String(),
			Requested: insufficient.Requested.StringFixed(2),
			Available: insufficient.Available.StringFixed(2),
		})
	case errors.Is(err, apperrors.ErrValidation):
		render.ServiceError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrCustomerNotFound),
		errors.Is(err, apperrors.ErrWalletNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound):
		render.ServiceError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInvalidOperation):
		render.ServiceError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrCustomerAlreadyExists):
		render.ServiceError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperrors.ErrUnauthorized):
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	default:
		l.Error("Request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Identity is always set by auth middleware
// Its absence means the handler is mounted without it
func identityOrFail(w http.ResponseWriter, r *http.Request, l logger.Logger) (models.Identity, bool) {
	identity, ok := identityctx.FromContext(r.Context())
	if !ok {
		l.Error("Handler called without identity", "uri", r.RequestURI)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
	return identity, ok
}

// allowed renders 403 if the caller may not act on resources of the owner
func allowed(w http.ResponseWriter, identity models.Identity, ownerID uuid.UUID) bool {
	if !identity.CanAccess(ownerID) {
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
