package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerAlreadyExists = errors.New("customer already exists")
	ErrCustomerNotFound      = errors.New("customer not found")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrInvalidOperation    = errors.New("invalid operation")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrValidation          = errors.New("validation failed")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Well known invalid operations. All of them match ErrInvalidOperation with errors.Is
var (
	ErrWithdrawDisabled       = invalidOperation("wallet is not active for withdraw")
	ErrTransactionNotPending  = invalidOperation("transaction is not pending")
	ErrApprovalTargetPending  = invalidOperation("transaction can't be set back to pending")
	ErrApprovalTargetUnknown  = invalidOperation("unknown approval status")
	ErrBalanceWouldBeNegative = invalidOperation("operation would make wallet figures negative")
)

func invalidOperation(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, reason)
}

// InsufficientBalanceError is returned when a withdrawal exceeds the usable balance
type InsufficientBalanceError struct {
	WalletID  uuid.UUID
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in wallet %s: requested %s, available %s",
		e.WalletID, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
