package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type WalletRepo struct {
	s *Storage
}

func (r *WalletRepo) CreateWallet(ctx context.Context, arg repository.CreateWalletParams) (models.Wallet, error) {
	var w models.Wallet

	err := r.s.do(ctx, func(st *state) error {
		if _, ok := st.customers[arg.CustomerID]; !ok {
			return apperrors.ErrCustomerNotFound
		}

		w = models.Wallet{
			ID:                uuid.New(),
			CreatedAt:         time.Now(),
			CustomerID:        arg.CustomerID,
			Name:              arg.Name,
			Currency:          arg.Currency,
			ActiveForShopping: arg.ActiveForShopping,
			ActiveForWithdraw: arg.ActiveForWithdraw,
			Balance:           decimal.Zero,
			UsableBalance:     decimal.Zero,
		}
		st.wallets[w.ID] = w
		return nil
	})

	return w, err
}

// GetWallet ignores forUpdate: units of work are serialized already
func (r *WalletRepo) GetWallet(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Wallet, error) {
	var w models.Wallet

	err := r.s.do(ctx, func(st *state) error {
		var ok bool
		if w, ok = st.wallets[id]; !ok {
			return apperrors.ErrWalletNotFound
		}
		return nil
	})

	return w, err
}

func (r *WalletRepo) UpdateBalances(ctx context.Context, w models.Wallet) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.wallets[w.ID]
		if !ok {
			return apperrors.ErrWalletNotFound
		}
		if !w.Sound() {
			return fmt.Errorf("wallet %s: %w", w.ID, apperrors.ErrBalanceWouldBeNegative)
		}

		stored.Balance = w.Balance
		stored.UsableBalance = w.UsableBalance
		st.wallets[w.ID] = stored
		return nil
	})
}

func (r *WalletRepo) ListWallets(ctx context.Context, customerID uuid.UUID, currency *models.Currency) ([]models.Wallet, error) {
	wallets := []models.Wallet{}

	err := r.s.do(ctx, func(st *state) error {
		for _, w := range st.wallets {
			if w.CustomerID != customerID {
				continue
			}
			if currency != nil && w.Currency != *currency {
				continue
			}
			wallets = append(wallets, w)
		}
		return nil
	})

	slices.SortFunc(wallets, func(a, b models.Wallet) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	return wallets, err
}

func (r *WalletRepo) ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var exists bool

	err := r.s.do(ctx, func(st *state) error {
		for _, w := range st.wallets {
			if w.CustomerID == customerID {
				exists = true
				break
			}
		}
		return nil
	})

	return exists, err
}
