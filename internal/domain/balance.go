package domain

import "github.com/shopspring/decimal"

// EUR is the settlement currency of the ledger.
const EUR = "EUR"

// AssetBalance is one asset row of an account balance snapshot.
type AssetBalance struct {
	Available decimal.Decimal
	InOrder   decimal.Decimal
}

// Quantity returns the total holding, free plus reserved in open orders.
func (b AssetBalance) Quantity() decimal.Decimal {
	return b.Available.Add(b.InOrder)
}

// BalanceSnapshot maps asset symbol to its balance as reported by the
// exchange at fetch time. It is rebuilt fresh on every sync and never
// persisted by this package.
type BalanceSnapshot map[string]AssetBalance

// EUR returns the authoritative settlement-currency balance.
func (s BalanceSnapshot) EUR() decimal.Decimal {
	return s[EUR].Quantity()
}
