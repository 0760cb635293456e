package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/service/auth/tokenmanager"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

type Config struct {
	// Header to read access token from and its auth scheme
	// If not set than default is used
	AccessHeaderName string
	AccessAuthScheme string
}

// Customer directory used to check credentials and roles
type customerDirectory interface {
	// Has to return apperrors.ErrUnauthorized if credentials do not match
	Authenticate(ctx context.Context, tckn string, password string) (models.Customer, error)

	// Has to return apperrors.ErrCustomerNotFound for unknown customer
	IsEmployee(ctx context.Context, customerID uuid.UUID) (bool, error)
}

type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	tokens    *tokenmanager.TokenManager
	customers customerDirectory
}

type LoginResult struct {
	Token    models.IssuedToken
	Customer models.Customer
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, customers customerDirectory) (*AuthService, error) {
	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		tokens:           tokens,
		customers:        customers,
	}, nil
}

// Login checks customer credentials and issues access token
func (s *AuthService) Login(ctx context.Context, tckn string, password string) (LoginResult, error) {
	customer, err := s.customers.Authenticate(ctx, strings.TrimSpace(tckn), password)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(customer)
	if err != nil {
		return LoginResult{}, fmt.Errorf("token could not be issued: %w", err)
	}

	return LoginResult{Token: token, Customer: customer}, nil
}

// Authenticate resolves caller identity from the request access token
// Employee flag is taken from the customer directory, not from the token,
// so the identity reflects the stored customer
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.Identity, error) {
	header := r.Header.Get(s.accessHeaderName)
	scheme, access, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) || access == "" {
		return models.Identity{}, fmt.Errorf("%w: access token not found", apperrors.ErrUnauthorized)
	}

	identity, err := s.tokens.ParseAccess(strings.TrimSpace(access))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	isEmployee, err := s.customers.IsEmployee(ctx, identity.CustomerID)
	switch {
	case errors.Is(err, apperrors.ErrCustomerNotFound):
		return models.Identity{}, fmt.Errorf("%w: customer is gone", apperrors.ErrUnauthorized)
	case err != nil:
		return models.Identity{}, err
	}

	identity.IsEmployee = isEmployee
	return identity, nil
}
