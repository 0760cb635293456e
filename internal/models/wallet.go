package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyTRY, CurrencyUSD, CurrencyEUR:
		return true
	default:
		return false
	}
}

// Wallet holds two running figures:
//   - Balance is the settled total of record
//   - UsableBalance is what is available for new withdrawals
//
// Both must stay non-negative after every committed operation.
type Wallet struct {
	ID                uuid.UUID
	CreatedAt         time.Time
	CustomerID        uuid.UUID
	Name              string
	Currency          Currency
	ActiveForShopping bool
	ActiveForWithdraw bool
	Balance           decimal.Decimal
	UsableBalance     decimal.Decimal
}

// Credit applies a newly created deposit.
// A pending deposit is recorded in Balance but can't be spent until approved.
func (w *Wallet) Credit(amount decimal.Decimal, status TransactionStatus) {
	w.Balance = w.Balance.Add(amount)
	if status == TransactionStatusApproved {
		w.UsableBalance = w.UsableBalance.Add(amount)
	}
}

// Debit applies a newly created withdrawal.
// A pending withdrawal reserves funds from UsableBalance and leaves Balance until approved.
func (w *Wallet) Debit(amount decimal.Decimal, status TransactionStatus) {
	w.UsableBalance = w.UsableBalance.Sub(amount)
	if status == TransactionStatusApproved {
		w.Balance = w.Balance.Sub(amount)
	}
}

// Settle applies the transition of a pending transaction to a terminal status.
func (w *Wallet) Settle(tx Transaction, to TransactionStatus) {
	switch {
	case tx.Type == TransactionTypeDeposit && to == TransactionStatusApproved:
		w.UsableBalance = w.UsableBalance.Add(tx.Amount)
	case tx.Type == TransactionTypeDeposit && to == TransactionStatusDenied:
		w.Balance = w.Balance.Sub(tx.Amount)
	case tx.Type == TransactionTypeWithdraw && to == TransactionStatusApproved:
		w.Balance = w.Balance.Sub(tx.Amount)
	case tx.Type == TransactionTypeWithdraw && to == TransactionStatusDenied:
		w.UsableBalance = w.UsableBalance.Add(tx.Amount)
	}
}

// Sound reports whether neither figure went negative
func (w *Wallet) Sound() bool {
	return !w.Balance.IsNegative() && !w.UsableBalance.IsNegative()
}
