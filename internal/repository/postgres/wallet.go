package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type WalletRepo struct {
	DB DBTX
}

const walletColumns = `id, created_at, customer_id, name, currency, active_for_shopping, active_for_withdraw, balance, usable_balance`

const createWallet = `-- name: CreateWallet
INSERT INTO wallets (customer_id, name, currency, active_for_shopping, active_for_withdraw)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + walletColumns

func (r *WalletRepo) CreateWallet(ctx context.Context, arg repository.CreateWalletParams) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, createWallet,
		arg.CustomerID, arg.Name, string(arg.Currency), arg.ActiveForShopping, arg.ActiveForWithdraw,
	)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return wallet, apperrors.ErrCustomerNotFound
		}
		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const getWallet = `-- name: GetWallet
SELECT ` + walletColumns + ` FROM wallets
WHERE id = $1
`

func (r *WalletRepo) GetWallet(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Wallet, error) {
	query := getWallet
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

const updateBalances = `-- name: UpdateBalances
UPDATE wallets
SET balance = $2, usable_balance = $3
WHERE id = $1
`

func (r *WalletRepo) UpdateBalances(ctx context.Context, w models.Wallet) error {
	tag, err := r.DB.Exec(ctx, updateBalances, w.ID, w.Balance, w.UsableBalance)

	switch {
	case err != nil:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return fmt.Errorf("wallet %s: %w", w.ID, apperrors.ErrBalanceWouldBeNegative)
		}
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrWalletNotFound
	default:
		return nil
	}
}

const listWallets = `-- name: ListWallets
SELECT ` + walletColumns + ` FROM wallets
WHERE customer_id = $1 AND ($2::text IS NULL OR currency = $2)
ORDER BY created_at, id
`

func (r *WalletRepo) ListWallets(ctx context.Context, customerID uuid.UUID, currency *models.Currency) ([]models.Wallet, error) {
	var c *string
	if currency != nil {
		s := string(*currency)
		c = &s
	}

	rows, _ := r.DB.Query(ctx, listWallets, customerID, c)
	wallets, err := pgx.CollectRows(rows, rowToWallet)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return wallets, nil
}

const walletExistsForCustomer = `-- name: WalletExistsForCustomer
SELECT EXISTS (SELECT 1 FROM wallets WHERE customer_id = $1)
`

func (r *WalletRepo) ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	rows, _ := r.DB.Query(ctx, walletExistsForCustomer, customerID)
	exists, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	var currency string
	err := row.Scan(
		&w.ID, &w.CreatedAt, &w.CustomerID, &w.Name, &currency,
		&w.ActiveForShopping, &w.ActiveForWithdraw, &w.Balance, &w.UsableBalance,
	)
	w.Currency = models.Currency(currency)
	return w, err
}
