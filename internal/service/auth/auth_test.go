package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository/memory"
	"github.com/nkiryanov/walletledger/internal/service/auth"
	"github.com/nkiryanov/walletledger/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/walletledger/internal/service/customer"
)

func Test_Auth(t *testing.T) {
	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
	require.NoError(t, err)

	newAuth := func(t *testing.T) (*auth.AuthService, *customer.CustomerService) {
		customers, err := customer.NewService(auth.BcryptHasher{Cost: bcrypt.MinCost}, memory.NewStorage(), nil)
		require.NoError(t, err)

		s, err := auth.NewService(auth.Config{}, tokens, customers)
		require.NoError(t, err)
		return s, customers
	}

	createCustomer := func(t *testing.T, customers *customer.CustomerService, isEmployee bool) models.Customer {
		c, err := customers.CreateCustomer(t.Context(), customer.CreateParams{
			Name: "Grace", Surname: "Hopper", TCKN: "12345678950", Password: "long-enough", IsEmployee: isEmployee,
		})
		require.NoError(t, err)
		return c
	}

	request := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	t.Run("login ok", func(t *testing.T) {
		s, customers := newAuth(t)
		c := createCustomer(t, customers, false)

		res, err := s.Login(t.Context(), " 12345678950 ", "long-enough")

		require.NoError(t, err)
		require.Equal(t, c.ID, res.Customer.ID)
		require.NotEmpty(t, res.Token.Value)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), res.Token.ExpiresAt, time.Minute)
	})

	t.Run("login bad credentials", func(t *testing.T) {
		s, customers := newAuth(t)
		createCustomer(t, customers, false)

		_, err := s.Login(t.Context(), "12345678950", "wrong-password")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)

		_, err = s.Login(t.Context(), "10000000146", "long-enough")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("authenticate ok", func(t *testing.T) {
		s, customers := newAuth(t)
		c := createCustomer(t, customers, true)
		res, err := s.Login(t.Context(), "12345678950", "long-enough")
		require.NoError(t, err)

		identity, err := s.Authenticate(t.Context(), request("Bearer "+res.Token.Value))

		require.NoError(t, err)
		require.Equal(t, c.ID, identity.CustomerID)
		require.True(t, identity.IsEmployee)
		require.True(t, identity.CanApprove())
	})

	t.Run("employee flag comes from directory", func(t *testing.T) {
		s, customers := newAuth(t)
		c := createCustomer(t, customers, false)

		// Token claims employee but the stored customer is not
		forged, err := tokens.Issue(models.Customer{ID: c.ID, IsEmployee: true})
		require.NoError(t, err)

		identity, err := s.Authenticate(t.Context(), request("Bearer "+forged.Value))

		require.NoError(t, err)
		require.False(t, identity.IsEmployee)
	})

	t.Run("customer gone", func(t *testing.T) {
		s, _ := newAuth(t)
		ghost, err := tokens.Issue(models.Customer{ID: [16]byte{1}})
		require.NoError(t, err)

		_, err = s.Authenticate(t.Context(), request("Bearer "+ghost.Value))

		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	badHeaders := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"no token":       "Bearer ",
		"garbage token":  "Bearer not-a-jwt",
	}
	for name, header := range badHeaders {
		t.Run(name, func(t *testing.T) {
			s, _ := newAuth(t)

			_, err := s.Authenticate(t.Context(), request(header))

			require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}

	t.Run("token signed with other key", func(t *testing.T) {
		s, customers := newAuth(t)
		c := createCustomer(t, customers, false)
		other, err := tokenmanager.New(tokenmanager.Config{SecretKey: "other-secret"})
		require.NoError(t, err)
		token, err := other.Issue(c)
		require.NoError(t, err)

		_, err = s.Authenticate(t.Context(), request("Bearer "+token.Value))

		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("custom header", func(t *testing.T) {
		customers, err := customer.NewService(auth.BcryptHasher{Cost: bcrypt.MinCost}, memory.NewStorage(), nil)
		require.NoError(t, err)
		s, err := auth.NewService(auth.Config{AccessHeaderName: "X-Access", AccessAuthScheme: "Token"}, tokens, customers)
		require.NoError(t, err)
		c := createCustomer(t, customers, false)
		token, err := tokens.Issue(c)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Access", "Token "+token.Value)
		identity, err := s.Authenticate(t.Context(), r)

		require.NoError(t, err)
		require.Equal(t, c.ID, identity.CustomerID)
	})
}
