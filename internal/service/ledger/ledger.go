// Package ledger is the balance accounting state machine of wallets.
//
// Every operation runs in one storage unit of work with the wallet row locked,
// so concurrent operations on a wallet are serialized and a failed operation
// commits nothing.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

// Amounts strictly above the threshold need employee approval
var DefaultThreshold = decimal.NewFromInt(1000)

// Money is stored as NUMERIC(19, 2)
const amountScale = 2

var maxAmount = decimal.New(1, 17)

type Config struct {
	// Approval threshold shared by deposits and withdrawals
	// If not set than DefaultThreshold is used
	Threshold decimal.Decimal
}

// Cache of wallets that must forget a wallet once its figures change
type walletCache interface {
	Invalidate(ctx context.Context, walletID uuid.UUID) error
}

type Service struct {
	threshold decimal.Decimal
	storage   repository.Storage
	cache     walletCache
	logger    logger.Logger
}

func NewService(cfg Config, storage repository.Storage, cache walletCache, l logger.Logger) (*Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage must not be nil")
	}

	threshold := cfg.Threshold
	if threshold.IsZero() {
		threshold = DefaultThreshold
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("threshold must be positive, got %s", threshold)
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		threshold: threshold,
		storage:   storage,
		cache:     cache,
		logger:    l.With("component", "ledger"),
	}, nil
}

type DepositParams struct {
	WalletID  uuid.UUID
	Amount    decimal.Decimal
	PartyType models.OppositePartyType
	Party     string
}

type WithdrawParams struct {
	WalletID  uuid.UUID
	Amount    decimal.Decimal
	PartyType models.OppositePartyType
	Party     string
}

type ApproveParams struct {
	TransactionID uuid.UUID
	Status        models.TransactionStatus
}

// statusFor applies the threshold rule
func (s *Service) statusFor(amount decimal.Decimal) models.TransactionStatus {
	if amount.GreaterThan(s.threshold) {
		return models.TransactionStatusPending
	}
	return models.TransactionStatusApproved
}

func validateMovement(amount decimal.Decimal, partyType models.OppositePartyType, party string) (string, error) {
	party = strings.TrimSpace(party)

	switch {
	case !amount.IsPositive():
		return party, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	case !amount.Equal(amount.Truncate(amountScale)):
		return party, fmt.Errorf("%w: amount must have at most %d decimal places", apperrors.ErrValidation, amountScale)
	case amount.GreaterThanOrEqual(maxAmount):
		return party, fmt.Errorf("%w: amount is too large", apperrors.ErrValidation)
	case !partyType.Valid():
		return party, fmt.Errorf("%w: unknown opposite party type %q", apperrors.ErrValidation, partyType)
	case party == "":
		return party, fmt.Errorf("%w: opposite party must not be blank", apperrors.ErrValidation)
	default:
		return party, nil
	}
}

// Deposit credits the wallet
// Amount above threshold is recorded in balance at once but becomes usable only after approval
func (s *Service) Deposit(ctx context.Context, p DepositParams) (models.Transaction, error) {
	party, err := validateMovement(p.Amount, p.PartyType, p.Party)
	if err != nil {
		return models.Transaction{}, err
	}

	var created models.Transaction
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		w, err := st.Wallet().GetWallet(ctx, p.WalletID, true)
		if err != nil {
			return err
		}

		status := s.statusFor(p.Amount)
		w.Credit(p.Amount, status)

		created, err = s.record(ctx, st, w, models.Transaction{
			WalletID:          w.ID,
			Amount:            p.Amount,
			Type:              models.TransactionTypeDeposit,
			OppositePartyType: p.PartyType,
			OppositeParty:     party,
			Status:            status,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("deposit to wallet %s: %w", p.WalletID, err)
	}

	s.afterCommit(ctx, created, "deposit created")
	return created, nil
}

// Withdraw debits the wallet
// Amount above threshold is reserved from usable balance and leaves balance only after approval
func (s *Service) Withdraw(ctx context.Context, p WithdrawParams) (models.Transaction, error) {
	party, err := validateMovement(p.Amount, p.PartyType, p.Party)
	if err != nil {
		return models.Transaction{}, err
	}

	var created models.Transaction
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		w, err := st.Wallet().GetWallet(ctx, p.WalletID, true)
		if err != nil {
			return err
		}

		if !w.ActiveForWithdraw {
			return apperrors.ErrWithdrawDisabled
		}
		if w.UsableBalance.LessThan(p.Amount) {
			return &apperrors.InsufficientBalanceError{
				WalletID:  w.ID,
				Requested: p.Amount,
				Available: w.UsableBalance,
			}
		}

		status := s.statusFor(p.Amount)
		w.Debit(p.Amount, status)

		created, err = s.record(ctx, st, w, models.Transaction{
			WalletID:          w.ID,
			Amount:            p.Amount,
			Type:              models.TransactionTypeWithdraw,
			OppositePartyType: p.PartyType,
			OppositeParty:     party,
			Status:            status,
		})
		return err
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("withdraw from wallet %s: %w", p.WalletID, err)
	}

	s.afterCommit(ctx, created, "withdraw created")
	return created, nil
}

// record stores new transaction together with updated wallet figures
func (s *Service) record(ctx context.Context, st repository.Storage, w models.Wallet, tx models.Transaction) (models.Transaction, error) {
	if !w.Sound() {
		return tx, apperrors.ErrBalanceWouldBeNegative
	}

	created, err := st.Transaction().CreateTransaction(ctx, tx)
	if err != nil {
		return created, err
	}

	if err := st.Wallet().UpdateBalances(ctx, w); err != nil {
		return created, err
	}

	s.invalidate(ctx, w.ID)
	return created, nil
}

// Approve settles pending transaction as APPROVED or DENIED
func (s *Service) Approve(ctx context.Context, p ApproveParams) (models.Transaction, error) {
	switch p.Status {
	case models.TransactionStatusApproved, models.TransactionStatusDenied:
	case models.TransactionStatusPending:
		return models.Transaction{}, apperrors.ErrApprovalTargetPending
	default:
		return models.Transaction{}, apperrors.ErrApprovalTargetUnknown
	}

	var settled models.Transaction
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		tx, err := st.Transaction().GetTransaction(ctx, p.TransactionID, true)
		if err != nil {
			return err
		}
		if tx.Status != models.TransactionStatusPending {
			return apperrors.ErrTransactionNotPending
		}

		w, err := st.Wallet().GetWallet(ctx, tx.WalletID, true)
		if err != nil {
			return err
		}

		w.Settle(tx, p.Status)
		if !w.Sound() {
			return apperrors.ErrBalanceWouldBeNegative
		}

		if err := st.Transaction().UpdateStatus(ctx, tx.ID, p.Status); err != nil {
			return err
		}
		if err := st.Wallet().UpdateBalances(ctx, w); err != nil {
			return err
		}
		s.invalidate(ctx, w.ID)

		tx.Status = p.Status
		settled = tx
		return nil
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("approve transaction %s: %w", p.TransactionID, err)
	}

	s.afterCommit(ctx, settled, "transaction settled")
	return settled, nil
}

// ListTransactions returns wallet transactions matched the filter, newest first
func (s *Service) ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, *filter.Type)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction status %q", apperrors.ErrValidation, *filter.Status)
	}

	if _, err := s.storage.Wallet().GetWallet(ctx, walletID, false); err != nil {
		return nil, err
	}

	return s.storage.Transaction().ListTransactions(ctx, walletID, filter)
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (models.Transaction, error) {
	return s.storage.Transaction().GetTransaction(ctx, id, false)
}

func (s *Service) afterCommit(ctx context.Context, tx models.Transaction, msg string) {
	s.logger.Debug(msg,
		"transaction", tx.ID,
		"wallet", tx.WalletID,
		"type", tx.Type,
		"status", tx.Status,
		"amount", tx.Amount,
	)

	// Once more: a reader may have cached the old figures before the commit
	s.invalidate(ctx, tx.WalletID)
}

func (s *Service) invalidate(ctx context.Context, walletID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, walletID); err != nil {
		s.logger.Warn("failed to invalidate cached wallet", "wallet", walletID, "error", err)
	}
}
