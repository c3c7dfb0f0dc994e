package portfolio

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eurledger/internal/domain"
	"eurledger/internal/services/ratelimit"
)

type fakePricer struct {
	prices map[string]string
	calls  int
}

func (f *fakePricer) Price(_ context.Context, market string) (decimal.Decimal, error) {
	f.calls++
	raw, ok := f.prices[market]
	if !ok {
		return decimal.Decimal{}, errors.Errorf("unknown market %s", market)
	}
	return decimal.RequireFromString(raw), nil
}

func newTestValuer(pricer Pricer) *Valuer {
	return NewValuer(pricer, ratelimit.New(0, zap.NewNop()), 50, zap.NewNop())
}

func TestValue(t *testing.T) {
	pricer := &fakePricer{prices: map[string]string{
		"BTC-EUR": "20000",
		"ETH-EUR": "3000",
	}}
	balances := domain.BalanceSnapshot{
		"EUR": {Available: decimal.NewFromInt(10)},
		"BTC": {Available: decimal.RequireFromString("0.5")},
		"ETH": {InOrder: decimal.NewFromInt(2)},
		"ADA": {}, // zero holding, skipped
	}

	positions, err := newTestValuer(pricer).Value(context.Background(), balances)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	// ordered by symbol
	require.Equal(t, "BTC", positions[0].Symbol)
	require.Equal(t, "ETH", positions[1].Symbol)
	require.Equal(t, "EUR", positions[2].Symbol)

	require.True(t, positions[0].TotalEUR.Equal(decimal.NewFromInt(10000)))
	require.True(t, positions[1].TotalEUR.Equal(decimal.NewFromInt(6000)))
	require.True(t, positions[2].TotalEUR.Equal(decimal.NewFromInt(10)))
	require.True(t, positions[2].UnitPriceEUR.Equal(decimal.NewFromInt(1)))

	require.Equal(t, 2, pricer.calls, "EUR needs no price lookup")
}

func TestValueLeavesFailedLookupsUnpriced(t *testing.T) {
	pricer := &fakePricer{prices: map[string]string{"BTC-EUR": "20000"}}
	balances := domain.BalanceSnapshot{
		"BTC": {Available: decimal.NewFromInt(1)},
		"XYZ": {Available: decimal.NewFromInt(5)},
	}

	positions, err := newTestValuer(pricer).Value(context.Background(), balances)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	require.True(t, positions[0].Priced)
	require.False(t, positions[1].Priced)
	require.True(t, positions[1].Quantity.Equal(decimal.NewFromInt(5)))
}

func TestValueAbortsOnExhaustedBudget(t *testing.T) {
	pricer := &fakePricer{prices: map[string]string{"BTC-EUR": "20000", "ETH-EUR": "3000"}}
	valuer := NewValuer(pricer, ratelimit.New(0, zap.NewNop()), 1, zap.NewNop())
	balances := domain.BalanceSnapshot{
		"BTC": {Available: decimal.NewFromInt(1)},
		"ETH": {Available: decimal.NewFromInt(1)},
	}

	_, err := valuer.Value(context.Background(), balances)
	var budget *domain.BudgetExhaustedError
	require.ErrorAs(t, err, &budget)
}
