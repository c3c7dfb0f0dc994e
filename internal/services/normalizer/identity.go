package normalizer

import (
	"fmt"

	"eurledger/internal/domain"
)

// Identity derivation. Identities must be reproducible across syncs from
// the immutable source record alone: the same underlying event yields the
// same string on every pass, so overlapping pages and repeated reads never
// survive deduplication twice.

func eventIdentity(ev domain.HistoryEvent) string {
	if ev.TxID != "" {
		return ev.TxID
	}
	return fmt.Sprintf("event:%d:%s:%s:%s:%s:%s",
		ev.ExecutedAt, ev.Type,
		ev.SentCurrency, ev.SentAmount.String(),
		ev.ReceivedCurrency, ev.ReceivedAmount.String())
}

func depositIdentity(d domain.Deposit) string {
	return fmt.Sprintf("deposit:%d:%s:%s", d.Timestamp, d.Amount.String(), d.Currency)
}

// Withdrawal identity includes the destination address: several withdrawals
// can legitimately share a timestamp and amount.
func withdrawalIdentity(w domain.Withdrawal) string {
	return fmt.Sprintf("withdrawal:%d:%s:%s:%s", w.Timestamp, w.Amount.String(), w.Currency, w.Address)
}

func tradeIdentity(t domain.Trade) string {
	return fmt.Sprintf("trade:%s:%s", t.Market, t.ID)
}
