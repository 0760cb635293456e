package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type walletCache interface {
	Get(ctx context.Context, id uuid.UUID) (models.Wallet, bool, error)
	Set(ctx context.Context, w models.Wallet) error
}

type WalletService struct {
	storage repository.Storage
	cache   walletCache
	logger  logger.Logger
}

// NewService creates wallet service
// cache may be nil, wallets are read from storage then
func NewService(storage repository.Storage, cache walletCache, l logger.Logger) *WalletService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &WalletService{
		storage: storage,
		cache:   cache,
		logger:  l.With("component", "wallet"),
	}
}

type CreateParams struct {
	CustomerID        uuid.UUID
	Name              string
	Currency          models.Currency
	ActiveForShopping bool
	ActiveForWithdraw bool
}

// CreateWallet opens wallet with zero balances
// Has to return apperrors.ErrCustomerNotFound if owner is unknown
func (s *WalletService) CreateWallet(ctx context.Context, p CreateParams) (models.Wallet, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Wallet{}, fmt.Errorf("%w: wallet name must not be blank", apperrors.ErrValidation)
	}
	if !p.Currency.Valid() {
		return models.Wallet{}, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, p.Currency)
	}

	w, err := s.storage.Wallet().CreateWallet(ctx, repository.CreateWalletParams{
		CustomerID:        p.CustomerID,
		Name:              p.Name,
		Currency:          p.Currency,
		ActiveForShopping: p.ActiveForShopping,
		ActiveForWithdraw: p.ActiveForWithdraw,
	})
	if err != nil {
		return w, fmt.Errorf("can't create wallet. Err: %w", err)
	}

	s.logger.Info("wallet created", "wallet", w.ID, "customer", w.CustomerID, "currency", w.Currency)
	return w, nil
}

// GetWallet reads through the cache
// Cache errors are logged and the wallet is served from storage
func (s *WalletService) GetWallet(ctx context.Context, id uuid.UUID) (models.Wallet, error) {
	if s.cache != nil {
		w, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.logger.Warn("wallet cache read failed", "wallet", id, "error", err)
		case ok:
			return w, nil
		}
	}

	w, err := s.storage.Wallet().GetWallet(ctx, id, false)
	if err != nil {
		return w, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, w); err != nil {
			s.logger.Warn("wallet cache write failed", "wallet", id, "error", err)
		}
	}

	return w, nil
}

// ListWallets returns customer wallets, only in the currency if it is set
func (s *WalletService) ListWallets(ctx context.Context, customerID uuid.UUID, currency *models.Currency) ([]models.Wallet, error) {
	if currency != nil && !currency.Valid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, *currency)
	}

	if _, err := s.storage.Customer().GetCustomerByID(ctx, customerID); err != nil {
		return nil, err
	}

	return s.storage.Wallet().ListWallets(ctx, customerID, currency)
}

func (s *WalletService) ExistsForCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	return s.storage.Wallet().ExistsForCustomer(ctx, customerID)
}
