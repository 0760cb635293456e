package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/models"
)

type CreateCustomerParams struct {
	Name           string
	Surname        string
	TCKN           string
	IsEmployee     bool
	HashedPassword string
}

// Customer repository interface
type CustomerRepo interface {
	// Create customer
	// If customer with the TCKN exists already has to return apperrors.ErrCustomerAlreadyExists
	CreateCustomer(ctx context.Context, arg CreateCustomerParams) (models.Customer, error)

	// Get customer by it's id or TCKN
	// If customer not found must return apperrors.ErrCustomerNotFound
	GetCustomerByID(ctx context.Context, id uuid.UUID) (models.Customer, error)
	GetCustomerByTCKN(ctx context.Context, tckn string) (models.Customer, error)

	// List all customers ordered by creation time
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

type CreateWalletParams struct {
	CustomerID        uuid.UUID
	Name              string
	Currency          models.Currency
	ActiveForShopping bool
	ActiveForWithdraw bool
}

// Wallet repository interface
type WalletRepo interface {
	// Create wallet with zero balances
	// If owner does not exist has to return apperrors.ErrCustomerNotFound
	CreateWallet(ctx context.Context, arg CreateWalletParams) (models.Wallet, error)

	// Get wallet by id
	// If forUpdate is set the wallet row is locked until the surrounding transaction ends
	// If wallet not found must return apperrors.ErrWalletNotFound
	GetWallet(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Wallet, error)

	// Persist both balance figures of the wallet
	UpdateBalances(ctx context.Context, w models.Wallet) error

	// List customer wallets, optionally only in the currency
	ListWallets(ctx context.Context, customerID uuid.UUID, currency *models.Currency) ([]models.Wallet, error)

	// Report whether the customer owns at least one wallet
	ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// Transaction repository interface
type TransactionRepo interface {
	// Store new transaction. ID and TransactionDate are set by the repository if empty
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)

	// Get transaction by id
	// If forUpdate is set the transaction row is locked until the surrounding transaction ends
	// If transaction not found must return apperrors.ErrTransactionNotFound
	GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error)

	// Set transaction status
	// If transaction not found must return apperrors.ErrTransactionNotFound
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error

	// List wallet transactions matched the filter, newest first
	ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error)
}

type Storage interface {
	Customer() CustomerRepo
	Wallet() WalletRepo
	Transaction() TransactionRepo

	// Run fn in a single unit of work
	// Everything fn did is committed if it returns nil and discarded otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
