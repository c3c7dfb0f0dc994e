package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"eurledger/internal/domain"
)

func TestDeposit(t *testing.T) {
	tx := Deposit(domain.Deposit{
		Timestamp: 1700000000000,
		Currency:  "EUR",
		Amount:    decimal.NewFromInt(500),
		Fee:       decimal.Zero,
		Status:    domain.StatusCompleted,
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.NewFromInt(500)))
	require.Equal(t, int64(1700000000), tx.BookingDate)
	require.Equal(t, "Deposit", tx.Title)
	require.Equal(t, "deposit:1700000000000:500:EUR", tx.ID)
}

func TestDepositFeeReducesCash(t *testing.T) {
	tx := Deposit(domain.Deposit{
		Timestamp: 1700000000000,
		Currency:  "EUR",
		Amount:    decimal.NewFromInt(100),
		Fee:       decimal.RequireFromString("0.50"),
		Status:    domain.StatusCompleted,
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.RequireFromString("99.50")))
}

func TestDepositDiscards(t *testing.T) {
	tests := []struct {
		name    string
		deposit domain.Deposit
	}{
		{"pending", domain.Deposit{Currency: "EUR", Amount: decimal.NewFromInt(10), Status: "pending"}},
		{"non-EUR", domain.Deposit{Currency: "BTC", Amount: decimal.NewFromInt(1), Status: domain.StatusCompleted}},
		{"zero net", domain.Deposit{Currency: "EUR", Amount: decimal.NewFromInt(1), Fee: decimal.NewFromInt(1), Status: domain.StatusCompleted}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Nil(t, Deposit(tc.deposit))
		})
	}
}

func TestWithdrawalIncludesFee(t *testing.T) {
	tx := Withdrawal(domain.Withdrawal{
		Timestamp: 1700000000000,
		Currency:  "EUR",
		Amount:    decimal.NewFromInt(100),
		Fee:       decimal.RequireFromString("0.25"),
		Status:    domain.StatusCompleted,
		Address:   "NL00BANK0123456789",
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.RequireFromString("-100.25")))
	require.Contains(t, tx.ID, "NL00BANK0123456789")
}

func TestWithdrawalsSharingTimestampGetDistinctIdentities(t *testing.T) {
	base := domain.Withdrawal{
		Timestamp: 1700000000000,
		Currency:  "EUR",
		Amount:    decimal.NewFromInt(50),
		Status:    domain.StatusCompleted,
	}
	first, second := base, base
	first.Address = "addr-1"
	second.Address = "addr-2"

	require.NotEqual(t, Withdrawal(first).ID, Withdrawal(second).ID)
}

func TestTradeBuySide(t *testing.T) {
	tx := Trade(domain.Trade{
		ID:          "t-1",
		Market:      "BTC-EUR",
		Side:        domain.SideBuy,
		Amount:      decimal.RequireFromString("0.005"),
		Price:       decimal.NewFromInt(85000),
		Fee:         decimal.RequireFromString("1.25"),
		FeeCurrency: "EUR",
		Timestamp:   1700000100000,
		Settled:     true,
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.RequireFromString("-426.25")))
	require.Equal(t, "Buy BTC", tx.Title)
	require.Equal(t, "trade:BTC-EUR:t-1", tx.ID)
}

func TestTradeSellSide(t *testing.T) {
	tx := Trade(domain.Trade{
		ID:          "t-2",
		Market:      "ETH-EUR",
		Side:        domain.SideSell,
		Amount:      decimal.NewFromInt(2),
		Price:       decimal.NewFromInt(3000),
		Fee:         decimal.NewFromInt(9),
		FeeCurrency: "EUR",
		Timestamp:   1700000200000,
		Settled:     true,
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.NewFromInt(5991)))
	require.Equal(t, "Sell ETH", tx.Title)
}

func TestTradeNonEURFeeIgnored(t *testing.T) {
	tx := Trade(domain.Trade{
		ID:          "t-3",
		Market:      "BTC-EUR",
		Side:        domain.SideBuy,
		Amount:      decimal.NewFromInt(1),
		Price:       decimal.NewFromInt(100),
		Fee:         decimal.RequireFromString("0.001"),
		FeeCurrency: "BTC",
		Timestamp:   1700000300000,
		Settled:     true,
	})
	require.NotNil(t, tx)
	require.True(t, tx.AmountEUR.Equal(decimal.NewFromInt(-100)))
}

func TestTradeUnsettledDiscarded(t *testing.T) {
	require.Nil(t, Trade(domain.Trade{
		ID:     "t-4",
		Market: "BTC-EUR",
		Side:   domain.SideBuy,
		Amount: decimal.NewFromInt(1),
		Price:  decimal.NewFromInt(100),
	}))
}

func TestEventSigns(t *testing.T) {
	tests := []struct {
		name  string
		event domain.HistoryEvent
		want  string
	}{
		{
			name: "received EUR",
			event: domain.HistoryEvent{
				Type:             "deposit",
				ExecutedAt:       1700000000000,
				ReceivedCurrency: "EUR",
				ReceivedAmount:   decimal.NewFromInt(250),
			},
			want: "250",
		},
		{
			name: "sent EUR with EUR fee",
			event: domain.HistoryEvent{
				Type:         "withdrawal",
				ExecutedAt:   1700000000000,
				SentCurrency: "EUR",
				SentAmount:   decimal.NewFromInt(100),
				FeeCurrency:  "EUR",
				FeeAmount:    decimal.RequireFromString("0.25"),
			},
			want: "-100.25",
		},
		{
			name: "buy paid in EUR",
			event: domain.HistoryEvent{
				Type:             "buy",
				ExecutedAt:       1700000000000,
				SentCurrency:     "EUR",
				SentAmount:       decimal.NewFromInt(425),
				ReceivedCurrency: "BTC",
				ReceivedAmount:   decimal.RequireFromString("0.005"),
				FeeCurrency:      "EUR",
				FeeAmount:        decimal.RequireFromString("1.25"),
			},
			want: "-426.25",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := Event(tc.event)
			require.NotNil(t, tx)
			require.True(t, tx.AmountEUR.Equal(decimal.RequireFromString(tc.want)),
				"got %s", tx.AmountEUR)
		})
	}
}

func TestEventDiscards(t *testing.T) {
	tests := []struct {
		name  string
		event domain.HistoryEvent
	}{
		{
			name: "no EUR leg",
			event: domain.HistoryEvent{
				Type:             "buy",
				ExecutedAt:       1700000000000,
				SentCurrency:     "BTC",
				SentAmount:       decimal.NewFromInt(1),
				ReceivedCurrency: "ETH",
				ReceivedAmount:   decimal.NewFromInt(10),
				FeeCurrency:      "EUR",
				FeeAmount:        decimal.NewFromInt(1),
			},
		},
		{
			name: "zero net delta",
			event: domain.HistoryEvent{
				Type:             "transfer",
				ExecutedAt:       1700000000000,
				SentCurrency:     "EUR",
				SentAmount:       decimal.NewFromInt(10),
				ReceivedCurrency: "EUR",
				ReceivedAmount:   decimal.NewFromInt(10),
			},
		},
		{
			name: "not completed",
			event: domain.HistoryEvent{
				Type:             "deposit",
				ExecutedAt:       1700000000000,
				Status:           "pending",
				ReceivedCurrency: "EUR",
				ReceivedAmount:   decimal.NewFromInt(10),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Nil(t, Event(tc.event))
		})
	}
}

func TestEventIdentityPrefersProviderID(t *testing.T) {
	ev := domain.HistoryEvent{
		TxID:             "tx-abc",
		Type:             "deposit",
		ExecutedAt:       1700000000000,
		ReceivedCurrency: "EUR",
		ReceivedAmount:   decimal.NewFromInt(10),
	}
	require.Equal(t, "tx-abc", Event(ev).ID)
}

func TestEventIdentityStableWithoutProviderID(t *testing.T) {
	ev := domain.HistoryEvent{
		Type:             "deposit",
		ExecutedAt:       1700000000000,
		ReceivedCurrency: "EUR",
		ReceivedAmount:   decimal.NewFromInt(10),
	}
	require.Equal(t, Event(ev).ID, Event(ev).ID)
	require.NotEmpty(t, Event(ev).ID)
}
