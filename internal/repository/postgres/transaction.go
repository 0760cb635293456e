package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
)

type TransactionRepo struct {
	DB DBTX
}

const transactionColumns = `id, wallet_id, amount, type, opposite_party_type, opposite_party, status, transaction_date`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, wallet_id, amount, type, opposite_party_type, opposite_party, status, transaction_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + transactionColumns

func (r *TransactionRepo) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createTransaction,
		tx.ID, tx.WalletID, tx.Amount, string(tx.Type), string(tx.OppositePartyType),
		tx.OppositeParty, string(tx.Status), tx.TransactionDate,
	)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getTransaction = `-- name: GetTransaction
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = $1
`

func (r *TransactionRepo) GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error) {
	query := getTransaction
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	tx, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return tx, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tx, apperrors.ErrTransactionNotFound
	default:
		return tx, fmt.Errorf("db error: %w", err)
	}
}

const updateTransactionStatus = `-- name: UpdateTransactionStatus
UPDATE transactions
SET status = $2
WHERE id = $1
`

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	tag, err := r.DB.Exec(ctx, updateTransactionStatus, id, string(status))

	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrTransactionNotFound
	default:
		return nil
	}
}

const listTransactions = `-- name: ListTransactions
SELECT ` + transactionColumns + ` FROM transactions
WHERE wallet_id = $1
	AND ($2::text IS NULL OR type = $2)
	AND ($3::text IS NULL OR status = $3)
ORDER BY transaction_date DESC, id
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	var txType, status *string
	if filter.Type != nil {
		s := string(*filter.Type)
		txType = &s
	}
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, _ := r.DB.Query(ctx, listTransactions, walletID, txType, status)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	var txType, partyType, status string
	err := row.Scan(&t.ID, &t.WalletID, &t.Amount, &txType, &partyType, &t.OppositeParty, &status, &t.TransactionDate)
	t.Type = models.TransactionType(txType)
	t.OppositePartyType = models.OppositePartyType(partyType)
	t.Status = models.TransactionStatus(status)
	return t, err
}
