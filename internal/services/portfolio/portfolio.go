// Package portfolio values current holdings in EUR with live prices. It is
// stateless across calls: the price memo lives only for one valuation pass.
package portfolio

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"eurledger/internal/domain"
	"eurledger/internal/services/ratelimit"
)

// Pricer returns the current EUR price of a market, e.g. "BTC-EUR".
type Pricer interface {
	Price(ctx context.Context, market string) (decimal.Decimal, error)
}

// Position is one valued holding. Priced is false when no EUR price could
// be obtained; Quantity is still reported.
type Position struct {
	Symbol       string
	Quantity     decimal.Decimal
	UnitPriceEUR decimal.Decimal
	TotalEUR     decimal.Decimal
	Priced       bool
}

type Valuer struct {
	pricer  Pricer
	limiter *ratelimit.Limiter
	budget  int
	logger  *zap.Logger
}

func NewValuer(pricer Pricer, limiter *ratelimit.Limiter, budget int, logger *zap.Logger) *Valuer {
	return &Valuer{pricer: pricer, limiter: limiter, budget: budget, logger: logger}
}

// Value prices every positive holding, ordered by symbol. A failed price
// lookup leaves the position unpriced rather than failing the whole pass;
// an exhausted request budget still aborts.
func (v *Valuer) Value(ctx context.Context, balances domain.BalanceSnapshot) ([]Position, error) {
	v.limiter.Reset(v.budget)
	memo := make(map[string]decimal.Decimal)

	symbols := make([]string, 0, len(balances))
	for symbol, balance := range balances {
		if balance.Quantity().IsPositive() {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	positions := make([]Position, 0, len(symbols))
	for _, symbol := range symbols {
		quantity := balances[symbol].Quantity()
		if symbol == domain.EUR {
			positions = append(positions, Position{
				Symbol:       symbol,
				Quantity:     quantity,
				UnitPriceEUR: decimal.NewFromInt(1),
				TotalEUR:     quantity,
				Priced:       true,
			})
			continue
		}

		market := symbol + "-" + domain.EUR
		price, ok := memo[market]
		if !ok {
			var err error
			price, err = v.fetchPrice(ctx, market)
			if err != nil {
				var budget *domain.BudgetExhaustedError
				if errors.As(err, &budget) {
					return nil, err
				}
				v.logger.Warn("price lookup failed, leaving position unpriced",
					zap.String("market", market), zap.Error(err))
				positions = append(positions, Position{Symbol: symbol, Quantity: quantity})
				continue
			}
			memo[market] = price
		}

		positions = append(positions, Position{
			Symbol:       symbol,
			Quantity:     quantity,
			UnitPriceEUR: price,
			TotalEUR:     quantity.Mul(price),
			Priced:       true,
		})
	}

	return positions, nil
}

func (v *Valuer) fetchPrice(ctx context.Context, market string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := v.limiter.Do(ctx, "price", func() error {
		var err error
		price, err = v.pricer.Price(ctx, market)
		return err
	})
	return price, err
}
