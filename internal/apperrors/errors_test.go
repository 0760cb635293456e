package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInsufficientBalanceError(t *testing.T) {
	walletID := uuid.MustParse("6f0c1c9a-3f57-4a4e-9d1e-2b0a4cbd1a11")
	err := fmt.Errorf("withdraw: %w", &InsufficientBalanceError{
		WalletID:  walletID,
		Requested: decimal.NewFromInt(150),
		Available: decimal.RequireFromString("99.5"),
	})

	require.ErrorIs(t, err, ErrInsufficientBalance)

	var target *InsufficientBalanceError
	require.ErrorAs(t, err, &target)
	require.Equal(t, walletID, target.WalletID)
	require.Equal(t,
		"withdraw: insufficient balance in wallet 6f0c1c9a-3f57-4a4e-9d1e-2b0a4cbd1a11: requested 150.00, available 99.50",
		err.Error(),
	)
}

func TestInvalidOperation(t *testing.T) {
	for _, err := range []error{
		ErrWithdrawDisabled,
		ErrTransactionNotPending,
		ErrApprovalTargetPending,
		ErrApprovalTargetUnknown,
		ErrBalanceWouldBeNegative,
	} {
		require.ErrorIs(t, err, ErrInvalidOperation)
		require.False(t, errors.Is(err, ErrInsufficientBalance))
	}
}
