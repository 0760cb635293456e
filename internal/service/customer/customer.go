package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
	"github.com/nkiryanov/walletledger/internal/service/auth"
	"github.com/nkiryanov/walletledger/internal/service/validate"
)

const minPasswordLength = 8

type CustomerService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
	logger  logger.Logger

	// Compared against when customer is unknown, so a miss costs as much as a wrong password
	dummyHash string
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage, l logger.Logger) (*CustomerService, error) {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	dummyHash, err := hasher.Hash("not-a-password")
	if err != nil {
		return nil, fmt.Errorf("hasher does not work. Err: %w", err)
	}

	return &CustomerService{
		hasher:    hasher,
		storage:   storage,
		logger:    l.With("component", "customer"),
		dummyHash: dummyHash,
	}, nil
}

type CreateParams struct {
	Name       string
	Surname    string
	TCKN       string
	Password   string
	IsEmployee bool
}

func (p *CreateParams) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.TCKN = strings.TrimSpace(p.TCKN)

	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name must not be blank", apperrors.ErrValidation)
	case p.Surname == "":
		return fmt.Errorf("%w: surname must not be blank", apperrors.ErrValidation)
	case len(p.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}

	if err := validate.TCKN(p.TCKN); err != nil {
		return fmt.Errorf("%w: tckn: %w", apperrors.ErrValidation, err)
	}

	return nil
}

// CreateCustomer registers customer
// Has to return apperrors.ErrCustomerAlreadyExists if TCKN is taken
func (s *CustomerService) CreateCustomer(ctx context.Context, p CreateParams) (models.Customer, error) {
	if err := p.normalize(); err != nil {
		return models.Customer{}, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.Customer{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	customer, err := s.storage.Customer().CreateCustomer(ctx, repository.CreateCustomerParams{
		Name:           p.Name,
		Surname:        p.Surname,
		TCKN:           p.TCKN,
		IsEmployee:     p.IsEmployee,
		HashedPassword: hash,
	})
	if err != nil {
		return customer, fmt.Errorf("can't create customer. Err: %w", err)
	}

	s.logger.Info("customer created", "customer", customer.ID, "employee", customer.IsEmployee)
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	return s.storage.Customer().GetCustomerByID(ctx, id)
}

func (s *CustomerService) GetCustomerByTCKN(ctx context.Context, tckn string) (models.Customer, error) {
	return s.storage.Customer().GetCustomerByTCKN(ctx, strings.TrimSpace(tckn))
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.storage.Customer().ListCustomers(ctx)
}

func (s *CustomerService) IsEmployee(ctx context.Context, id uuid.UUID) (bool, error) {
	customer, err := s.storage.Customer().GetCustomerByID(ctx, id)
	if err != nil {
		return false, err
	}
	return customer.IsEmployee, nil
}

// HasWallets reports whether the customer owns any wallet
func (s *CustomerService) HasWallets(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.storage.Customer().GetCustomerByID(ctx, id); err != nil {
		return false, err
	}
	return s.storage.Wallet().ExistsForCustomer(ctx, id)
}

// Authenticate returns customer if the password matches
// Unknown customer and wrong password are indistinguishable: both are apperrors.ErrUnauthorized
func (s *CustomerService) Authenticate(ctx context.Context, tckn string, password string) (models.Customer, error) {
	customer, err := s.storage.Customer().GetCustomerByTCKN(ctx, tckn)
	switch {
	case errors.Is(err, apperrors.ErrCustomerNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.Customer{}, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	case err != nil:
		return models.Customer{}, err
	}

	if err := s.hasher.Compare(customer.HashedPassword, password); err != nil {
		return models.Customer{}, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	return customer, nil
}

// EnsureEmployee creates the employee if no customer with the TCKN exists
// Used to bootstrap the very first employee, who then creates everybody else
func (s *CustomerService) EnsureEmployee(ctx context.Context, p CreateParams) (models.Customer, error) {
	p.IsEmployee = true

	existing, err := s.storage.Customer().GetCustomerByTCKN(ctx, strings.TrimSpace(p.TCKN))
	switch {
	case err == nil && existing.IsEmployee:
		return existing, nil
	case err == nil:
		return existing, fmt.Errorf("customer %s exists and is not an employee: %w", existing.ID, apperrors.ErrCustomerAlreadyExists)
	case !errors.Is(err, apperrors.ErrCustomerNotFound):
		return existing, err
	}

	return s.CreateCustomer(ctx, p)
}
