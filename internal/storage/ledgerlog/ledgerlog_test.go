package ledgerlog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"eurledger/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Last()
	require.NoError(t, err)
	require.False(t, found)

	entry := Entry{
		BoundaryMs: 1700000000000,
		Result: domain.SyncResult{
			Balance: decimal.RequireFromString("73.75"),
			Transactions: []domain.Transaction{{
				ID:          "deposit:1700000000000:500:EUR",
				BookingDate: 1700000000,
				AmountEUR:   decimal.NewFromInt(500),
				Title:       "Deposit",
			}},
		},
	}
	require.NoError(t, store.Save(entry))

	got, found, err := store.Last()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, entry.BoundaryMs, got.BoundaryMs)
	require.True(t, got.Result.Balance.Equal(entry.Result.Balance))
	require.Len(t, got.Result.Transactions, 1)
	require.Equal(t, entry.Result.Transactions[0].ID, got.Result.Transactions[0].ID)
}

func TestStoreLastReturnsMostRecent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(Entry{BoundaryMs: 1}))
	require.NoError(t, store.Save(Entry{BoundaryMs: 2}))

	got, found, err := store.Last()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(2), got.BoundaryMs)
}
