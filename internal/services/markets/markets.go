// Package markets infers which EUR trading markets are economically
// relevant for an account, so the full backfill only pays per-market
// trade-history requests for markets the account plausibly touched.
package markets

import (
	"sort"
	"strings"

	"eurledger/internal/domain"
)

// Candidates derives <ASSET>-EUR market symbols from every non-EUR asset
// with a positive balance and every non-EUR currency appearing in the
// recent slice of the account history. Discovery is representative, not
// exhaustive: callers pass only a few recent pages of events.
func Candidates(balances domain.BalanceSnapshot, recent []domain.HistoryEvent) []string {
	seen := make(map[string]struct{})

	addAsset := func(asset string) {
		if asset == "" || asset == domain.EUR {
			return
		}
		seen[asset+"-"+domain.EUR] = struct{}{}
	}

	for asset, balance := range balances {
		if balance.Quantity().IsPositive() {
			addAsset(asset)
		}
	}
	for _, ev := range recent {
		addAsset(ev.SentCurrency)
		addAsset(ev.ReceivedCurrency)
		addAsset(ev.FeeCurrency)
		if base, ok := strings.CutSuffix(ev.Market, "-"+domain.EUR); ok {
			addAsset(base)
		}
	}

	out := make([]string, 0, len(seen))
	for market := range seen {
		out = append(out, market)
	}
	sort.Strings(out)
	return out
}

// Select intersects candidates with the markets the provider actually
// offers, pins candidates from the priority list to the front (in priority
// order, deduplicated), appends the remainder lexicographically and
// truncates at maxMarkets. Pinning keeps the largest holdings from being
// starved out by alphabetical truncation.
func Select(available, candidates, priority []string, maxMarkets int) []string {
	offered := make(map[string]struct{}, len(available))
	for _, market := range available {
		offered[market] = struct{}{}
	}

	eligible := make(map[string]struct{})
	for _, candidate := range candidates {
		if _, ok := offered[candidate]; ok {
			eligible[candidate] = struct{}{}
		}
	}

	selected := make([]string, 0, len(eligible))
	taken := make(map[string]struct{}, len(eligible))
	for _, market := range priority {
		if _, ok := eligible[market]; !ok {
			continue
		}
		if _, dup := taken[market]; dup {
			continue
		}
		selected = append(selected, market)
		taken[market] = struct{}{}
	}

	rest := make([]string, 0, len(eligible))
	for market := range eligible {
		if _, dup := taken[market]; !dup {
			rest = append(rest, market)
		}
	}
	sort.Strings(rest)
	selected = append(selected, rest...)

	if len(selected) > maxMarkets {
		selected = selected[:maxMarkets]
	}
	return selected
}
