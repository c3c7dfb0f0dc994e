// Package sync reconstructs the EUR cash ledger of an exchange account from
// its read-only REST history and keeps it consistent with the authoritative
// balance across refreshes.
package sync

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"eurledger/internal/domain"
	"eurledger/internal/services/fetcher"
	"eurledger/internal/services/markets"
	"eurledger/internal/services/normalizer"
	"eurledger/internal/services/ratelimit"
	"eurledger/internal/services/reconcile"
)

// Provider is the read-only slice of the exchange API the orchestrator
// consumes. Implementations live in internal/clients.
type Provider interface {
	Balances(ctx context.Context) (domain.BalanceSnapshot, error)
	EventPage(ctx context.Context, page, pageSize int) (domain.EventPage, error)
	Deposits(ctx context.Context, w domain.Window) ([]domain.Deposit, error)
	Withdrawals(ctx context.Context, w domain.Window) ([]domain.Withdrawal, error)
	Trades(ctx context.Context, market string, w domain.Window) ([]domain.Trade, error)
	Markets(ctx context.Context) ([]string, error)
}

// Config carries the per-refresh knobs of the orchestrator. Budgets differ
// by mode because a full backfill issues far more requests than an
// incremental catch-up.
type Config struct {
	IncrementalBudget int
	FullBudget        int
	EventPageSize     int
	TransferPageSize  int
	TradePageSize     int
	DiscoveryPages    int
	MaxMarkets        int
	PriorityMarkets   []string
	BackfillStartMs   int64
}

// Orchestrator drives one synchronization pass. All state below is scoped
// to a single refresh except the configuration; the caller owns the since
// boundary between refreshes.
type Orchestrator struct {
	provider Provider
	limiter  *ratelimit.Limiter
	cfg      Config
	logger   *zap.Logger

	// now is swapped in tests to pin reconciliation booking dates.
	now func() time.Time
}

func New(provider Provider, limiter *ratelimit.Limiter, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Synchronize rebuilds the EUR cash ledger. sinceMs is the epoch-ms
// boundary of the previous sync; a zero boundary or forceFull selects a
// full reconstruction from the account's inception. The first error from
// any sub-step aborts the whole refresh: a partially reconstructed cash
// history would misrepresent the balance as already reconciled.
func (o *Orchestrator) Synchronize(ctx context.Context, sinceMs int64, forceFull bool) (*domain.SyncResult, error) {
	full := forceFull || sinceMs <= 0
	logger := o.logger.With(
		zap.String("refresh", uuid.NewString()),
		zap.Bool("full", full))

	if full {
		o.limiter.Reset(o.cfg.FullBudget)
	} else {
		o.limiter.Reset(o.cfg.IncrementalBudget)
	}
	logger.Info("starting ledger sync")

	var balances domain.BalanceSnapshot
	err := o.limiter.Do(ctx, "balance", func() error {
		var err error
		balances, err = o.provider.Balances(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch balances")
	}
	authoritative := balances.EUR()

	var transactions []domain.Transaction
	if full {
		transactions, err = o.fullBackfill(ctx, logger, balances, authoritative)
	} else {
		transactions, err = o.incremental(ctx, sinceMs)
	}
	if err != nil {
		return nil, err
	}

	sortTransactions(transactions)
	logger.Info("ledger sync complete",
		zap.Int("transactions", len(transactions)),
		zap.Int("requests", o.limiter.Issued()),
		zap.String("balance", authoritative.String()))

	return &domain.SyncResult{Balance: authoritative, Transactions: transactions}, nil
}

// incremental pages the account-history feed and keeps events strictly
// newer than the boundary. The feed is newest-first, so paging stops as
// soon as a page reaches back past the boundary.
func (o *Orchestrator) incremental(ctx context.Context, sinceMs int64) ([]domain.Transaction, error) {
	seen := newDedup()
	transactions := make([]domain.Transaction, 0)

	for page := 1; ; page++ {
		var ep domain.EventPage
		err := o.limiter.Do(ctx, "history", func() error {
			var err error
			ep, err = o.provider.EventPage(ctx, page, o.cfg.EventPageSize)
			return err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch history page %d", page)
		}

		reachedBoundary := false
		for _, ev := range ep.Items {
			if ev.ExecutedAt <= sinceMs {
				reachedBoundary = true
				continue
			}
			tx := normalizer.Event(ev)
			if tx == nil || !seen.admit(tx.ID) {
				continue
			}
			transactions = append(transactions, *tx)
		}

		if reachedBoundary || ep.CurrentPage >= ep.TotalPages {
			return transactions, nil
		}
	}
}

// fullBackfill reconstructs the entire cash history: lifetime deposits and
// withdrawals, trades on the discovered markets, then a reconciliation
// against the authoritative balance.
func (o *Orchestrator) fullBackfill(ctx context.Context, logger *zap.Logger, balances domain.BalanceSnapshot, authoritative decimal.Decimal) ([]domain.Transaction, error) {
	lifetime := domain.Window{StartMs: o.cfg.BackfillStartMs, EndMs: o.now().UnixMilli()}

	deposits, err := fetcher.Fetch(ctx, lifetime, o.cfg.TransferPageSize,
		func(ctx context.Context, w domain.Window) ([]domain.Deposit, error) {
			var items []domain.Deposit
			err := o.limiter.Do(ctx, "deposits", func() error {
				var err error
				items, err = o.provider.Deposits(ctx, w)
				return err
			})
			return items, err
		})
	if err != nil {
		return nil, errors.Wrap(err, "fetch deposits")
	}

	withdrawals, err := fetcher.Fetch(ctx, lifetime, o.cfg.TransferPageSize,
		func(ctx context.Context, w domain.Window) ([]domain.Withdrawal, error) {
			var items []domain.Withdrawal
			err := o.limiter.Do(ctx, "withdrawals", func() error {
				var err error
				items, err = o.provider.Withdrawals(ctx, w)
				return err
			})
			return items, err
		})
	if err != nil {
		return nil, errors.Wrap(err, "fetch withdrawals")
	}

	selected, err := o.discoverMarkets(ctx, logger, balances)
	if err != nil {
		return nil, err
	}

	var trades []domain.Trade
	for _, market := range selected {
		items, err := fetcher.Fetch(ctx, lifetime, o.cfg.TradePageSize,
			func(ctx context.Context, w domain.Window) ([]domain.Trade, error) {
				var items []domain.Trade
				err := o.limiter.Do(ctx, "trades", func() error {
					var err error
					items, err = o.provider.Trades(ctx, market, w)
					return err
				})
				return items, err
			})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch trades for %s", market)
		}
		trades = append(trades, items...)
	}

	seen := newDedup()
	transactions := make([]domain.Transaction, 0, len(deposits)+len(withdrawals)+len(trades))
	sum := decimal.Zero
	admit := func(tx *domain.Transaction) {
		if tx == nil || !seen.admit(tx.ID) {
			return
		}
		transactions = append(transactions, *tx)
		sum = sum.Add(tx.AmountEUR)
	}

	for _, d := range deposits {
		admit(normalizer.Deposit(d))
	}
	for _, w := range withdrawals {
		admit(normalizer.Withdrawal(w))
	}
	for _, t := range trades {
		admit(normalizer.Trade(t))
	}

	if opening := reconcile.Opening(transactions, sum, authoritative, o.now()); opening != nil {
		logger.Info("closing residual with opening adjustment",
			zap.String("amount", opening.AmountEUR.StringFixed(2)))
		transactions = append(transactions, *opening)
	}

	return transactions, nil
}

// discoverMarkets intersects inferred candidates with the provider's
// tradable list. Providers without a history feed fall back to
// balance-derived candidates only.
func (o *Orchestrator) discoverMarkets(ctx context.Context, logger *zap.Logger, balances domain.BalanceSnapshot) ([]string, error) {
	recent, err := o.recentEvents(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrEventFeedUnsupported) {
			return nil, errors.Wrap(err, "fetch recent history")
		}
		logger.Debug("history feed unsupported, discovering from balances only")
	}

	candidates := markets.Candidates(balances, recent)

	var available []string
	err = o.limiter.Do(ctx, "markets", func() error {
		var err error
		available, err = o.provider.Markets(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch tradable markets")
	}

	selected := markets.Select(available, candidates, o.cfg.PriorityMarkets, o.cfg.MaxMarkets)
	logger.Debug("markets selected for trade backfill", zap.Strings("markets", selected))
	return selected, nil
}

func (o *Orchestrator) recentEvents(ctx context.Context) ([]domain.HistoryEvent, error) {
	var recent []domain.HistoryEvent
	for page := 1; page <= o.cfg.DiscoveryPages; page++ {
		var ep domain.EventPage
		err := o.limiter.Do(ctx, "history", func() error {
			var err error
			ep, err = o.provider.EventPage(ctx, page, o.cfg.EventPageSize)
			return err
		})
		if err != nil {
			return nil, err
		}
		recent = append(recent, ep.Items...)
		if ep.CurrentPage >= ep.TotalPages {
			break
		}
	}
	return recent, nil
}

// sortTransactions fixes the output order by booking date, identity as a
// tiebreaker, so unchanged remote state reproduces byte-identical results.
func sortTransactions(transactions []domain.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].BookingDate != transactions[j].BookingDate {
			return transactions[i].BookingDate < transactions[j].BookingDate
		}
		return transactions[i].ID < transactions[j].ID
	})
}
