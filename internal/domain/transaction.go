package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is a single signed EUR cash movement in the reconstructed
// ledger. ID is deterministically derived from the source record, so the
// same underlying event always maps to the same identity across syncs.
type Transaction struct {
	ID          string          `json:"id"`
	BookingDate int64           `json:"bookingDate"` // epoch seconds
	AmountEUR   decimal.Decimal `json:"amountEur"`
	Title       string          `json:"title"`
	Detail      string          `json:"detail"`
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s EUR (%s)", t.Title, t.AmountEUR.StringFixed(2), t.ID)
}

// SyncResult is the ledger state produced by one refresh cycle: the
// authoritative EUR balance and the ordered cash movements behind it.
type SyncResult struct {
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}
