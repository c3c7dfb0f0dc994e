package markets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"eurledger/internal/domain"
)

func TestCandidates(t *testing.T) {
	balances := domain.BalanceSnapshot{
		"EUR": {Available: decimal.NewFromInt(100)},
		"BTC": {Available: decimal.RequireFromString("0.5")},
		"ADA": {InOrder: decimal.NewFromInt(10)},
		"XRP": {}, // zero balance, no candidate
	}
	recent := []domain.HistoryEvent{
		{SentCurrency: "EUR", ReceivedCurrency: "DOGE"},
		{Market: "SOL-EUR"},
		{SentCurrency: "BTC", ReceivedCurrency: "EUR"}, // BTC already present
	}

	got := Candidates(balances, recent)
	require.Equal(t, []string{"ADA-EUR", "BTC-EUR", "DOGE-EUR", "SOL-EUR"}, got)
}

func TestCandidatesEmptyInputs(t *testing.T) {
	require.Empty(t, Candidates(domain.BalanceSnapshot{}, nil))
}

func TestSelectPriorityAndCap(t *testing.T) {
	candidates := []string{"DOGE-EUR", "BTC-EUR", "ADA-EUR", "ETH-EUR"}
	available := []string{"ADA-EUR", "BTC-EUR", "DOGE-EUR", "ETH-EUR", "SOL-EUR"}
	priority := []string{"BTC-EUR", "ETH-EUR", "SOL-EUR"}

	got := Select(available, candidates, priority, 3)
	require.Equal(t, []string{"BTC-EUR", "ETH-EUR", "ADA-EUR"}, got)
}

func TestSelectDropsUnofferedCandidates(t *testing.T) {
	got := Select([]string{"BTC-EUR"}, []string{"BTC-EUR", "FAKE-EUR"}, nil, 10)
	require.Equal(t, []string{"BTC-EUR"}, got)
}

func TestSelectDeduplicatesPriorityList(t *testing.T) {
	got := Select(
		[]string{"BTC-EUR", "ETH-EUR"},
		[]string{"BTC-EUR", "ETH-EUR"},
		[]string{"BTC-EUR", "BTC-EUR"},
		10)
	require.Equal(t, []string{"BTC-EUR", "ETH-EUR"}, got)
}
