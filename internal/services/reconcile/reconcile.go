// Package reconcile closes the gap between the reconstructed cash history
// and the authoritative exchange balance with a single synthetic opening
// transaction.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"eurledger/internal/domain"
)

const identityPrefix = "opening"

// tolerance is one minor currency unit; residuals below it are rounding
// noise, not missing history.
var tolerance = decimal.New(1, -2)

// Opening returns the synthetic adjustment needed to make the transaction
// deltas sum to the authoritative EUR balance, or nil when they already do
// within tolerance. The booking date is the earliest reconstructed booking
// date, or now for an empty ledger. The identity embeds the booking date
// and the formatted residual, so repeated full syncs landing on the same
// residual reproduce the same row. Only full syncs may call this: an
// incremental pass has no opening boundary to adjust against.
func Opening(transactions []domain.Transaction, sum, authoritative decimal.Decimal, now time.Time) *domain.Transaction {
	residual := authoritative.Sub(sum)
	if residual.Abs().LessThan(tolerance) {
		return nil
	}

	booking := now.Unix()
	for _, tx := range transactions {
		if tx.BookingDate < booking {
			booking = tx.BookingDate
		}
	}

	formatted := residual.StringFixed(2)
	return &domain.Transaction{
		ID:          fmt.Sprintf("%s:%d:%s", identityPrefix, booking, formatted),
		BookingDate: booking,
		AmountEUR:   residual,
		Title:       "Opening balance",
		Detail:      fmt.Sprintf("Adjustment of %s EUR to match the exchange balance", formatted),
	}
}
