package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
)

type CustomerRepo struct {
	DB DBTX
}

const customerColumns = `id, created_at, name, surname, tckn, is_employee, password_hash`

const createCustomer = `-- name: CreateCustomer
INSERT INTO customers (name, surname, tckn, is_employee, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns

func (r *CustomerRepo) CreateCustomer(ctx context.Context, arg repository.CreateCustomerParams) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, createCustomer, arg.Name, arg.Surname, arg.TCKN, arg.IsEmployee, arg.HashedPassword)
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return customer, apperrors.ErrCustomerAlreadyExists
		}
		return customer, fmt.Errorf("db error: %w", err)
	}

	return customer, nil
}

const getCustomerByID = `-- name: GetCustomerByID
SELECT ` + customerColumns + ` FROM customers
WHERE id = $1
`

func (r *CustomerRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomerByID, id)
	return collectCustomer(rows)
}

const getCustomerByTCKN = `-- name: GetCustomerByTCKN
SELECT ` + customerColumns + ` FROM customers
WHERE tckn = $1
`

func (r *CustomerRepo) GetCustomerByTCKN(ctx context.Context, tckn string) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomerByTCKN, tckn)
	return collectCustomer(rows)
}

const listCustomers = `-- name: ListCustomers
SELECT ` + customerColumns + ` FROM customers
ORDER BY created_at, id
`

func (r *CustomerRepo) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, _ := r.DB.Query(ctx, listCustomers)
	customers, err := pgx.CollectRows(rows, rowToCustomer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return customers, nil
}

func collectCustomer(rows pgx.Rows) (models.Customer, error) {
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)

	switch {
	case err == nil:
		return customer, nil
	case errors.Is(err, pgx.ErrNoRows):
		return customer, apperrors.ErrCustomerNotFound
	default:
		return customer, fmt.Errorf("db error: %w", err)
	}
}

func rowToCustomer(row pgx.CollectableRow) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Name, &c.Surname, &c.TCKN, &c.IsEmployee, &c.HashedPassword)
	return c, err
}
