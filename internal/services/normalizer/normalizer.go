// Package normalizer converts raw provider records into signed EUR ledger
// transactions. A nil result means the record has no EUR cash effect and is
// discarded; that is a filtering rule, not an error.
package normalizer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"eurledger/internal/domain"
)

// Deposit maps a completed EUR deposit to a positive cash movement net of
// the (EUR-denominated) fee. Non-EUR deposits do not move cash and are
// discarded.
func Deposit(d domain.Deposit) *domain.Transaction {
	if d.Status != domain.StatusCompleted || d.Currency != domain.EUR {
		return nil
	}
	amount := d.Amount.Sub(d.Fee)
	if amount.IsZero() {
		return nil
	}
	return &domain.Transaction{
		ID:          depositIdentity(d),
		BookingDate: d.Timestamp / 1000,
		AmountEUR:   amount,
		Title:       "Deposit",
		Detail:      fmt.Sprintf("Deposit of %s EUR", d.Amount.StringFixed(2)),
	}
}

// Withdrawal maps a completed EUR withdrawal to a negative cash movement,
// fee included.
func Withdrawal(w domain.Withdrawal) *domain.Transaction {
	if w.Status != domain.StatusCompleted || w.Currency != domain.EUR {
		return nil
	}
	amount := w.Amount.Add(w.Fee)
	if amount.IsZero() {
		return nil
	}
	detail := fmt.Sprintf("Withdrawal of %s EUR", w.Amount.StringFixed(2))
	if w.Address != "" {
		detail += " to " + w.Address
	}
	return &domain.Transaction{
		ID:          withdrawalIdentity(w),
		BookingDate: w.Timestamp / 1000,
		AmountEUR:   amount.Neg(),
		Title:       "Withdrawal",
		Detail:      detail,
	}
}

// Trade maps a settled fill on a EUR-quoted market to its cash leg:
// quantity times price, the EUR fee always reducing the holder's cash.
// Unsettled trades are discarded; the next sync re-observes them once they
// settle.
func Trade(t domain.Trade) *domain.Transaction {
	if !t.Settled {
		return nil
	}

	base := baseAsset(t.Market)
	gross := t.Amount.Mul(t.Price)
	fee := decimal.Zero
	if t.FeeCurrency == domain.EUR {
		fee = t.Fee
	}

	var delta decimal.Decimal
	var title string
	switch t.Side {
	case domain.SideBuy:
		delta = gross.Add(fee).Neg()
		title = "Buy " + base
	case domain.SideSell:
		delta = gross.Sub(fee)
		title = "Sell " + base
	default:
		return nil
	}
	if delta.IsZero() {
		return nil
	}

	return &domain.Transaction{
		ID:          tradeIdentity(t),
		BookingDate: t.Timestamp / 1000,
		AmountEUR:   delta,
		Title:       title,
		Detail: fmt.Sprintf("%s %s @ %s EUR, fee %s EUR",
			t.Amount.String(), base, t.Price.StringFixed(2), fee.StringFixed(2)),
	}
}

// Event maps a generic history record to the sum of its EUR legs: received
// EUR counts positive, sent EUR negative, an EUR fee always negative. An
// event touching EUR on neither principal leg has no cash effect and is
// discarded, as is one whose net delta rounds to zero at the cent.
func Event(ev domain.HistoryEvent) *domain.Transaction {
	if ev.Status != "" && ev.Status != domain.StatusCompleted {
		return nil
	}
	if ev.SentCurrency != domain.EUR && ev.ReceivedCurrency != domain.EUR {
		return nil
	}

	delta := decimal.Zero
	if ev.ReceivedCurrency == domain.EUR {
		delta = delta.Add(ev.ReceivedAmount)
	}
	if ev.SentCurrency == domain.EUR {
		delta = delta.Sub(ev.SentAmount)
	}
	if ev.FeeCurrency == domain.EUR {
		delta = delta.Sub(ev.FeeAmount)
	}
	if delta.Round(2).IsZero() {
		return nil
	}

	title, detail := eventText(ev)
	return &domain.Transaction{
		ID:          eventIdentity(ev),
		BookingDate: ev.ExecutedAt / 1000,
		AmountEUR:   delta,
		Title:       title,
		Detail:      detail,
	}
}

func eventText(ev domain.HistoryEvent) (title, detail string) {
	switch ev.Type {
	case "deposit":
		return "Deposit", fmt.Sprintf("Deposit of %s EUR", ev.ReceivedAmount.StringFixed(2))
	case "withdrawal":
		return "Withdrawal", fmt.Sprintf("Withdrawal of %s EUR", ev.SentAmount.StringFixed(2))
	case domain.SideBuy:
		return "Buy " + ev.ReceivedCurrency, fmt.Sprintf("%s %s for %s EUR",
			ev.ReceivedAmount.String(), ev.ReceivedCurrency, ev.SentAmount.StringFixed(2))
	case domain.SideSell:
		return "Sell " + ev.SentCurrency, fmt.Sprintf("%s %s for %s EUR",
			ev.SentAmount.String(), ev.SentCurrency, ev.ReceivedAmount.StringFixed(2))
	default:
		if ev.Type == "" {
			return "Transaction", "Transaction"
		}
		title = strings.ToUpper(ev.Type[:1]) + ev.Type[1:]
		return title, title
	}
}

func baseAsset(market string) string {
	if base, ok := strings.CutSuffix(market, "-"+domain.EUR); ok {
		return base
	}
	return market
}
