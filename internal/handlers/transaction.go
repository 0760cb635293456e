package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/service/ledger"
)

type movementRequest struct {
	WalletID          uuid.UUID                `json:"walletId" validate:"required"`
	Amount            *decimal.Decimal         `json:"amount" validate:"required"`
	OppositePartyType models.OppositePartyType `json:"oppositePartyType" validate:"required,oneof=IBAN PAYMENT"`
	OppositeParty     string                   `json:"oppositeParty" validate:"required,max=255"`
}

func handleDeposit(walletService walletService, ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[movementRequest](w, r)
		if err != nil {
			return
		}
		if !ownedWallet(w, r, walletService, identity, data.WalletID, l) {
			return
		}

		tx, err := ledgerService.Deposit(r.Context(), ledger.DepositParams{
			WalletID:  data.WalletID,
			Amount:    *data.Amount,
			PartyType: data.OppositePartyType,
			Party:     data.OppositeParty,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.Success(w, http.StatusCreated, "Deposit created", newTransactionResponse(tx))
	})
}

func handleWithdraw(walletService walletService, ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[movementRequest](w, r)
		if err != nil {
			return
		}
		if !ownedWallet(w, r, walletService, identity, data.WalletID, l) {
			return
		}

		tx, err := ledgerService.Withdraw(r.Context(), ledger.WithdrawParams{
			WalletID:  data.WalletID,
			Amount:    *data.Amount,
			PartyType: data.OppositePartyType,
			Party:     data.OppositeParty,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.Success(w, http.StatusCreated, "Withdraw created", newTransactionResponse(tx))
	})
}

func handleApprove(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		TransactionID uuid.UUID                `json:"transactionId" validate:"required"`
		Status        models.TransactionStatus `json:"status" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}
		if !identity.CanApprove() {
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		tx, err := ledgerService.Approve(r.Context(), ledger.ApproveParams{
			TransactionID: data.TransactionID,
			Status:        data.Status,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.Success(w, http.StatusOK, "Transaction settled", newTransactionResponse(tx))
	})
}

func handleGetTransaction(walletService walletService, ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		tx, err := ledgerService.GetTransaction(r.Context(), id)
		if err != nil {
			renderError(w, err, l)
			return
		}
		if !ownedWallet(w, r, walletService, identity, tx.WalletID, l) {
			return
		}

		render.JSON(w, newTransactionResponse(tx))
	})
}

func handleListTransactions(walletService walletService, ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		walletID, err := uuid.Parse(r.PathValue("walletId"))
		if err != nil {
			render.ServiceError(w, "Invalid wallet id", http.StatusBadRequest)
			return
		}
		if !ownedWallet(w, r, walletService, identity, walletID, l) {
			return
		}

		var filter models.TransactionFilter
		query := r.URL.Query()
		if v := query.Get("type"); v != "" {
			t := models.TransactionType(v)
			filter.Type = &t
		}
		if v := query.Get("status"); v != "" {
			s := models.TransactionStatus(v)
			filter.Status = &s
		}

		txs, err := ledgerService.ListTransactions(r.Context(), walletID, filter)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, mapSlice(txs, newTransactionResponse))
	})
}
