package domain

import "github.com/shopspring/decimal"

// Provider record statuses and trade sides as delivered by the exchange.
const (
	StatusCompleted = "completed"

	SideBuy  = "buy"
	SideSell = "sell"
)

// HistoryEvent is one row of the generic account-history feed, as received.
// Sent/received legs describe the currency flow from the account holder's
// point of view; either leg may be absent.
type HistoryEvent struct {
	TxID             string
	Type             string // buy, sell, deposit, withdrawal, rebate, ...
	ExecutedAt       int64  // epoch milliseconds
	Status           string
	Market           string // optional, e.g. "BTC-EUR"
	SentCurrency     string
	SentAmount       decimal.Decimal
	ReceivedCurrency string
	ReceivedAmount   decimal.Decimal
	FeeCurrency      string
	FeeAmount        decimal.Decimal
}

// EventPage is one page of the history feed.
type EventPage struct {
	Items       []HistoryEvent
	CurrentPage int
	TotalPages  int
}

// Deposit is a transfer of funds into the exchange account.
type Deposit struct {
	Timestamp int64 // epoch milliseconds
	Currency  string
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	Status    string
}

// Withdrawal is a transfer of funds out of the exchange account. Address
// distinguishes withdrawals sharing a timestamp and amount.
type Withdrawal struct {
	Timestamp int64
	Currency  string
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	Status    string
	Address   string
}

// Trade is one fill on a EUR-quoted market.
type Trade struct {
	ID          string
	Market      string // e.g. "BTC-EUR"
	Side        string // SideBuy or SideSell
	Amount      decimal.Decimal // base asset quantity
	Price       decimal.Decimal // EUR per unit
	Fee         decimal.Decimal
	FeeCurrency string
	Timestamp   int64
	Settled     bool
}
