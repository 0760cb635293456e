package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository"
	"github.com/nkiryanov/walletledger/internal/testutil"
)

func TestTransactionRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withWallet := func(t *testing.T, fn func(pgx.Tx, repository.Storage, models.Wallet)) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			newCustomer(t, storage, "10000000146")
			customer, err := storage.Customer().GetCustomerByTCKN(t.Context(), "10000000146")
			require.NoError(t, err)

			w, err := storage.Wallet().CreateWallet(t.Context(), repository.CreateWalletParams{
				CustomerID: customer.ID,
				Name:       "main",
				Currency:   models.CurrencyTRY,
			})
			require.NoError(t, err)

			fn(tx, storage, w)
		})
	}

	newTx := func(walletID uuid.UUID, txType models.TransactionType, status models.TransactionStatus, at time.Time) models.Transaction {
		return models.Transaction{
			WalletID:          walletID,
			Amount:            decimal.RequireFromString("100.10"),
			Type:              txType,
			OppositePartyType: models.OppositePartyIBAN,
			OppositeParty:     "TR330006100519786457841326",
			Status:            status,
			TransactionDate:   at,
		}
	}

	t.Run("CreateTransaction", func(t *testing.T) {
		withWallet(t, func(tx pgx.Tx, storage repository.Storage, w models.Wallet) {
			created, err := storage.Transaction().CreateTransaction(t.Context(),
				newTx(w.ID, models.TransactionTypeDeposit, models.TransactionStatusApproved, time.Time{}))

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, created.ID, "id has to be generated")
			require.WithinDuration(t, time.Now(), created.TransactionDate, 5*time.Second)
			require.True(t, decimal.RequireFromString("100.10").Equal(created.Amount))
			require.Equal(t, models.TransactionTypeDeposit, created.Type)
			require.Equal(t, models.OppositePartyIBAN, created.OppositePartyType)
			require.Equal(t, models.TransactionStatusApproved, created.Status)

			got, err := storage.Transaction().GetTransaction(t.Context(), created.ID, true)
			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
			require.Equal(t, created.OppositeParty, got.OppositeParty)
		})
	})

	t.Run("GetTransaction not found", func(t *testing.T) {
		withWallet(t, func(tx pgx.Tx, storage repository.Storage, w models.Wallet) {
			_, err := storage.Transaction().GetTransaction(t.Context(), uuid.New(), false)

			require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		})
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		withWallet(t, func(tx pgx.Tx, storage repository.Storage, w models.Wallet) {
			created, err := storage.Transaction().CreateTransaction(t.Context(),
				newTx(w.ID, models.TransactionTypeWithdraw, models.TransactionStatusPending, time.Time{}))
			require.NoError(t, err)

			err = storage.Transaction().UpdateStatus(t.Context(), created.ID, models.TransactionStatusDenied)
			require.NoError(t, err)

			got, err := storage.Transaction().GetTransaction(t.Context(), created.ID, false)
			require.NoError(t, err)
			require.Equal(t, models.TransactionStatusDenied, got.Status)

			err = storage.Transaction().UpdateStatus(t.Context(), uuid.New(), models.TransactionStatusDenied)
			require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		})
	})

	t.Run("ListTransactions", func(t *testing.T) {
		withWallet(t, func(tx pgx.Tx, storage repository.Storage, w models.Wallet) {
			base := testutil.MustParseTime("2025-01-01 10:00:00Z")
			seed := []models.Transaction{
				newTx(w.ID, models.TransactionTypeDeposit, models.TransactionStatusApproved, base),
				newTx(w.ID, models.TransactionTypeDeposit, models.TransactionStatusPending, base.Add(time.Minute)),
				newTx(w.ID, models.TransactionTypeWithdraw, models.TransactionStatusApproved, base.Add(2*time.Minute)),
			}
			for _, s := range seed {
				_, err := storage.Transaction().CreateTransaction(t.Context(), s)
				require.NoError(t, err)
			}

			deposit := models.TransactionTypeDeposit
			approved := models.TransactionStatusApproved

			tests := []struct {
				name   string
				filter models.TransactionFilter
				want   []models.TransactionType
			}{
				{"no filter newest first", models.TransactionFilter{}, []models.TransactionType{"WITHDRAW", "DEPOSIT", "DEPOSIT"}},
				{"by type", models.TransactionFilter{Type: &deposit}, []models.TransactionType{"DEPOSIT", "DEPOSIT"}},
				{"by status", models.TransactionFilter{Status: &approved}, []models.TransactionType{"WITHDRAW", "DEPOSIT"}},
				{"by both", models.TransactionFilter{Type: &deposit, Status: &approved}, []models.TransactionType{"DEPOSIT"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := storage.Transaction().ListTransactions(t.Context(), w.ID, tt.filter)
					require.NoError(t, err)

					types := make([]models.TransactionType, 0, len(got))
					for _, tx := range got {
						types = append(types, tx.Type)
					}
					require.Equal(t, tt.want, types)
				})
			}

			empty, err := storage.Transaction().ListTransactions(t.Context(), uuid.New(), models.TransactionFilter{})
			require.NoError(t, err)
			require.Empty(t, empty)
		})
	})
}

func TestStorage_InTx(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("rollback on error", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			errBoom := errors.New("boom")

			err := storage.InTx(t.Context(), func(s repository.Storage) error {
				newCustomer(t, s, "10000000146")
				return errBoom
			})
			require.ErrorIs(t, err, errBoom)

			_, err = storage.Customer().GetCustomerByTCKN(t.Context(), "10000000146")
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound, "nothing has to be committed")
		})
	})

	t.Run("commit on success", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			err := storage.InTx(t.Context(), func(s repository.Storage) error {
				newCustomer(t, s, "10000000146")
				return nil
			})
			require.NoError(t, err)

			_, err = storage.Customer().GetCustomerByTCKN(t.Context(), "10000000146")
			require.NoError(t, err)
		})
	})
}
