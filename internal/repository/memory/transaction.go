package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
)

type TransactionRepo struct {
	s *Storage
}

func (r *TransactionRepo) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}

	err := r.s.do(ctx, func(st *state) error {
		if _, ok := st.wallets[tx.WalletID]; !ok {
			return apperrors.ErrWalletNotFound
		}
		st.transactions[tx.ID] = tx
		return nil
	})

	return tx, err
}

// GetTransaction ignores forUpdate: units of work are serialized already
func (r *TransactionRepo) GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error) {
	var tx models.Transaction

	err := r.s.do(ctx, func(st *state) error {
		var ok bool
		if tx, ok = st.transactions[id]; !ok {
			return apperrors.ErrTransactionNotFound
		}
		return nil
	})

	return tx, err
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	return r.s.do(ctx, func(st *state) error {
		tx, ok := st.transactions[id]
		if !ok {
			return apperrors.ErrTransactionNotFound
		}
		tx.Status = status
		st.transactions[id] = tx
		return nil
	})
}

func (r *TransactionRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	transactions := []models.Transaction{}

	err := r.s.do(ctx, func(st *state) error {
		for _, tx := range st.transactions {
			if tx.WalletID == walletID && filter.Match(tx) {
				transactions = append(transactions, tx)
			}
		}
		return nil
	})

	// Newest first
	slices.SortFunc(transactions, func(a, b models.Transaction) int {
		return cmp.Or(b.TransactionDate.Compare(a.TransactionDate), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	return transactions, err
}
