package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/walletledger/internal/apperrors"
	"github.com/nkiryanov/walletledger/internal/models"
	"github.com/nkiryanov/walletledger/internal/repository/postgres"
	"github.com/nkiryanov/walletledger/internal/testutil"
)

// Same engine on the real store: row locks have to serialize operations on a wallet
func TestLedger_Postgres(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("concurrent withdrawals", func(t *testing.T) {
		f := newFixture(t, postgres.NewStorage(pg.Pool))
		w := f.newWallet(t, "1000", "1000", true)

		committed := concurrentWithdrawals(t, f, w.ID, 20, "600")

		require.Equal(t, 1, committed)
		f.requireFigures(t, w.ID, "400", "400")
	})

	t.Run("concurrent pending withdrawals", func(t *testing.T) {
		f := newFixture(t, postgres.NewStorage(pg.Pool))
		w := f.newWallet(t, "5000", "5000", true)

		// Pending withdrawals reserve usable balance, so only two of 2000 fit
		committed := concurrentWithdrawals(t, f, w.ID, 10, "2000")

		require.Equal(t, 2, committed)
		f.requireFigures(t, w.ID, "5000", "1000")
	})

	t.Run("example", func(t *testing.T) {
		f := newFixture(t, postgres.NewStorage(pg.Pool))
		w := f.newWallet(t, "0", "0", true)

		dep := f.deposit(t, w.ID, "2000")
		require.Equal(t, models.TransactionStatusPending, dep.Status)
		f.requireFigures(t, w.ID, "2000", "0")

		_, err := f.ledger.Approve(t.Context(), ApproveParams{TransactionID: dep.ID, Status: models.TransactionStatusApproved})
		require.NoError(t, err)
		f.requireFigures(t, w.ID, "2000", "2000")

		wd, err := f.withdraw(w.ID, "1500")
		require.NoError(t, err)
		require.Equal(t, models.TransactionStatusPending, wd.Status)
		f.requireFigures(t, w.ID, "2000", "500")

		_, err = f.ledger.Approve(t.Context(), ApproveParams{TransactionID: wd.ID, Status: models.TransactionStatusDenied})
		require.NoError(t, err)
		f.requireFigures(t, w.ID, "2000", "2000")

		_, err = f.ledger.Approve(t.Context(), ApproveParams{TransactionID: wd.ID, Status: models.TransactionStatusApproved})
		require.ErrorIs(t, err, apperrors.ErrTransactionNotPending)

		txs, err := f.ledger.ListTransactions(t.Context(), w.ID, models.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		require.Equal(t, wd.ID, txs[0].ID, "newest first")
	})

	t.Run("failed operation commits nothing", func(t *testing.T) {
		f := newFixture(t, postgres.NewStorage(pg.Pool))
		w := f.newWallet(t, "100", "100", false)

		_, err := f.withdraw(w.ID, "10")
		require.ErrorIs(t, err, apperrors.ErrWithdrawDisabled)

		txs, err := f.ledger.ListTransactions(t.Context(), w.ID, models.TransactionFilter{})
		require.NoError(t, err)
		require.Empty(t, txs)
		f.requireFigures(t, w.ID, "100", "100")
	})
}
