package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"eurledger/internal/domain"
)

func TestOpeningNoActionWithinTolerance(t *testing.T) {
	sum := decimal.RequireFromString("73.75")
	authoritative := decimal.RequireFromString("73.755")

	require.Nil(t, Opening(nil, sum, authoritative, time.Now()))
}

func TestOpeningClosesResidual(t *testing.T) {
	transactions := []domain.Transaction{
		{ID: "a", BookingDate: 1700000100, AmountEUR: decimal.NewFromInt(-400)},
		{ID: "b", BookingDate: 1700000000, AmountEUR: decimal.NewFromInt(500)},
	}
	sum := decimal.NewFromInt(100)
	authoritative := decimal.RequireFromString("126.25")

	tx := Opening(transactions, sum, authoritative, time.Now())
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.RequireFromString("26.25")))
	// booked at the earliest reconstructed date
	require.Equal(t, int64(1700000000), tx.BookingDate)
	require.Equal(t, "opening:1700000000:26.25", tx.ID)
}

func TestOpeningEmptyLedgerBooksNow(t *testing.T) {
	now := time.Unix(1800000000, 0)

	tx := Opening(nil, decimal.Zero, decimal.NewFromInt(10), now)
	require.NotNil(t, tx)
	require.Equal(t, int64(1800000000), tx.BookingDate)
}

func TestOpeningIdentityReproducible(t *testing.T) {
	transactions := []domain.Transaction{{ID: "a", BookingDate: 1700000000}}
	sum := decimal.Zero
	authoritative := decimal.NewFromInt(5)

	first := Opening(transactions, sum, authoritative, time.Now())
	second := Opening(transactions, sum, authoritative, time.Now())
	require.Equal(t, first.ID, second.ID)
}

func TestOpeningNegativeResidual(t *testing.T) {
	tx := Opening(nil, decimal.NewFromInt(100), decimal.NewFromInt(80), time.Unix(1800000000, 0))
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.NewFromInt(-20)))
	require.Equal(t, "opening:1800000000:-20.00", tx.ID)
}
