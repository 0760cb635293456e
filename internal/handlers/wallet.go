package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/service/wallet"
)

func handleCreateWallet(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		// Caller's own wallet if not set
		CustomerID        *uuid.UUID      `json:"customerId"`
		Name              string          `json:"name" validate:"required,max=100"`
		Currency          models.Currency `json:"currency" validate:"required,oneof=TRY USD EUR"`
		ActiveForShopping bool            `json:"activeForShopping"`
		ActiveForWithdraw bool            `json:"activeForWithdraw"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		ownerID := identity.CustomerID
		if data.CustomerID != nil {
			ownerID = *data.CustomerID
		}
		if !allowed(w, identity, ownerID) {
			return
		}

		created, err := walletService.CreateWallet(r.Context(), wallet.CreateParams{
			CustomerID:        ownerID,
			Name:              data.Name,
			Currency:          data.Currency,
			ActiveForShopping: data.ActiveForShopping,
			ActiveForWithdraw: data.ActiveForWithdraw,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.Success(w, http.StatusCreated, "Wallet created", newWalletResponse(created))
	})
}

func handleGetWallet(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid wallet id", http.StatusBadRequest)
			return
		}

		found, err := walletService.GetWallet(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		if !allowed(w, identity, found.CustomerID) {
			return
		}

		render.JSON(w, newWalletResponse(found))
	})
}

func handleListWallets(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		customerID, err := uuid.Parse(r.PathValue("customerId"))
		if err != nil {
			render.ServiceError(w, "Invalid customer id", http.StatusBadRequest)
			return
		}
		if !allowed(w, identity, customerID) {
			return
		}

		var currency *models.Currency
		if v := r.URL.Query().Get("currency"); v != "" {
			c := models.Currency(v)
			currency = &c
		}

		wallets, err := walletService.ListWallets(r.Context(), customerID, currency)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, mapSlice(wallets, newWalletResponse))
	})
}

// ownedWallet loads wallet and checks the caller may act on it
// Renders the response and returns false otherwise
func ownedWallet(w http.ResponseWriter, r *http.Request, walletService walletService, identity models.Identity, id uuid.UUID, l logger.Logger) bool {
	found, err := walletService.GetWallet(r.Context(), id)
	if err != nil {
		renderError(w, err, l)
		return false
	}
	return allowed(w, identity, found.CustomerID)
}
