package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdraw
}

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusDenied   TransactionStatus = "DENIED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusApproved, TransactionStatusDenied:
		return true
	default:
		return false
	}
}

// Terminal statuses are never changed again
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusDenied
}

type OppositePartyType string

const (
	OppositePartyIBAN    OppositePartyType = "IBAN"
	OppositePartyPayment OppositePartyType = "PAYMENT"
)

func (p OppositePartyType) Valid() bool {
	return p == OppositePartyIBAN || p == OppositePartyPayment
}

type Transaction struct {
	ID                uuid.UUID
	WalletID          uuid.UUID
	Amount            decimal.Decimal
	Type              TransactionType
	OppositePartyType OppositePartyType
	OppositeParty     string
	Status            TransactionStatus
	TransactionDate   time.Time
}

// Optional filter for listing wallet transactions. Nil fields match everything.
type TransactionFilter struct {
	Type   *TransactionType
	Status *TransactionStatus
}

func (f TransactionFilter) Match(tx Transaction) bool {
	if f.Type != nil && *f.Type != tx.Type {
		return false
	}
	if f.Status != nil && *f.Status != tx.Status {
		return false
	}
	return true
}
