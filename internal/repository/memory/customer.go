package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type CustomerRepo struct {
	s *Storage
}

func (r *CustomerRepo) CreateCustomer(ctx context.Context, arg repository.CreateCustomerParams) (models.Customer, error) {
	var c models.Customer

	err := r.s.do(ctx, func(st *state) error {
		if _, ok := st.tckn[arg.TCKN]; ok {
			return apperrors.ErrCustomerAlreadyExists
		}

		c = models.Customer{
			ID:             uuid.New(),
			CreatedAt:      time.Now(),
			Name:           arg.Name,
			Surname:        arg.Surname,
			TCKN:           arg.TCKN,
			IsEmployee:     arg.IsEmployee,
			HashedPassword: arg.HashedPassword,
		}
		st.customers[c.ID] = c
		st.tckn[c.TCKN] = c.ID
		return nil
	})

	return c, err
}

func (r *CustomerRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	var c models.Customer

	err := r.s.do(ctx, func(st *state) error {
		var ok bool
		if c, ok = st.customers[id]; !ok {
			return apperrors.ErrCustomerNotFound
		}
		return nil
	})

	return c, err
}

func (r *CustomerRepo) GetCustomerByTCKN(ctx context.Context, tckn string) (models.Customer, error) {
	var c models.Customer

	err := r.s.do(ctx, func(st *state) error {
		id, ok := st.tckn[tckn]
		if !ok {
			return apperrors.ErrCustomerNotFound
		}
		c = st.customers[id]
		return nil
	})

	return c, err
}

func (r *CustomerRepo) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer

	err := r.s.do(ctx, func(st *state) error {
		customers = slices.Collect(maps.Values(st.customers))
		return nil
	})

	slices.SortFunc(customers, func(a, b models.Customer) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	return customers, err
}
