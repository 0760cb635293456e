package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/models"
)

type customerResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	TCKN       string    `json:"tckn"`
	IsEmployee bool      `json:"isEmployee"`
	CreatedAt  time.Time `json:"createdAt"`
	HasWallets *bool     `json:"hasWallets,omitempty"`
}

func newCustomerResponse(c models.Customer) customerResponse {
	return customerResponse{
		ID:         c.ID,
		Name:       c.Name,
		Surname:    c.Surname,
		TCKN:       c.TCKN,
		IsEmployee: c.IsEmployee,
		CreatedAt:  c.CreatedAt,
	}
}

type walletResponse struct {
	ID                uuid.UUID       `json:"id"`
	CustomerID        uuid.UUID       `json:"customerId"`
	Name              string          `json:"name"`
	Currency          models.Currency `json:"currency"`
	ActiveForShopping bool            `json:"activeForShopping"`
	ActiveForWithdraw bool            `json:"activeForWithdraw"`
	Balance           string          `json:"balance"`
	UsableBalance     string          `json:"usableBalance"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func newWalletResponse(w models.Wallet) walletResponse {
	return walletResponse{
		ID:                w.ID,
		CustomerID:        w.CustomerID,
		Name:              w.Name,
		Currency:          w.Currency,
		ActiveForShopping: w.ActiveForShopping,
		ActiveForWithdraw: w.ActiveForWithdraw,
		Balance:           w.Balance.StringFixed(2),
		UsableBalance:     w.UsableBalance.StringFixed(2),
		CreatedAt:         w.CreatedAt,
	}
}

type transactionResponse struct {
	ID                uuid.UUID                `json:"id"`
	WalletID          uuid.UUID                `json:"walletId"`
	Amount            string                   `json:"amount"`
	Type              models.TransactionType   `json:"type"`
	Status            models.TransactionStatus `json:"status"`
	OppositePartyType models.OppositePartyType `json:"oppositePartyType"`
	OppositeParty     string                   `json:"oppositeParty"`
	TransactionDate   time.Time                `json:"transactionDate"`
}

func newTransactionResponse(tx models.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		WalletID:          tx.WalletID,
		Amount:            tx.Amount.StringFixed(2),
		Type:              tx.Type,
		Status:            tx.Status,
		OppositePartyType: tx.OppositePartyType,
		OppositeParty:     tx.OppositeParty,
		TransactionDate:   tx.TransactionDate,
	}
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
