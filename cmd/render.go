package main

import (
	"fmt"
	"strings"
	"time"

	"eurledger/internal/domain"
	"eurledger/internal/services/portfolio"
	"eurledger/internal/storage/ledgerlog"
)

func storeEntry(boundaryMs int64, result *domain.SyncResult) ledgerlog.Entry {
	return ledgerlog.Entry{BoundaryMs: boundaryMs, Result: *result}
}

func renderLedger(result *domain.SyncResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("EUR balance: %s", result.Balance.StringFixed(2))))
	b.WriteString("\n")
	for _, tx := range result.Transactions {
		date := time.Unix(tx.BookingDate, 0).UTC().Format("2006-01-02")
		b.WriteString(fmt.Sprintf("%s  %s  %-20s %s\n",
			mutedStyle.Render(date),
			amountStyle.Render(tx.AmountEUR.StringFixed(2)),
			tx.Title,
			mutedStyle.Render(tx.Detail)))
	}
	return b.String()
}

func renderPortfolio(positions []portfolio.Position) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Portfolio"))
	b.WriteString("\n")
	for _, p := range positions {
		if !p.Priced {
			b.WriteString(fmt.Sprintf("%-6s %s %s\n", p.Symbol, p.Quantity.String(), mutedStyle.Render("(no price)")))
			continue
		}
		b.WriteString(fmt.Sprintf("%-6s %s @ %s = %s EUR\n",
			p.Symbol, p.Quantity.String(), p.UnitPriceEUR.StringFixed(2), amountStyle.Render(p.TotalEUR.StringFixed(2))))
	}
	return b.String()
}
