package clients

import (
	"context"
	"strconv"
	"strings"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eurledger/internal/domain"
)

// Binance rejects clients that exceed the request weight with code -1003.
const binanceRateLimitCode = -1003

// BinanceClient adapts Binance's EUR-quoted spot surface to the same
// provider interface as the primary client. Binance has no generic account
// history feed, so incremental sync is unavailable and market discovery
// relies on balances alone.
type BinanceClient struct {
	client *binance.Client
}

func NewBinanceClient(apiKey, apiSecret string) *BinanceClient {
	return &BinanceClient{client: binance.NewClient(apiKey, apiSecret)}
}

func (c *BinanceClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	account, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "account")
	}

	snapshot := make(domain.BalanceSnapshot, len(account.Balances))
	for _, balance := range account.Balances {
		free, err := parseAmount("account", "free", balance.Free)
		if err != nil {
			return nil, err
		}
		locked, err := parseAmount("account", "locked", balance.Locked)
		if err != nil {
			return nil, err
		}
		if free.IsZero() && locked.IsZero() {
			continue
		}
		snapshot[balance.Asset] = domain.AssetBalance{Available: free, InOrder: locked}
	}
	return snapshot, nil
}

func (c *BinanceClient) EventPage(ctx context.Context, page, pageSize int) (domain.EventPage, error) {
	return domain.EventPage{}, domain.ErrEventFeedUnsupported
}

func (c *BinanceClient) Deposits(ctx context.Context, w domain.Window) ([]domain.Deposit, error) {
	items, err := c.fiatHistory(ctx, binance.TransactionTypeDeposit, w)
	if err != nil {
		return nil, err
	}
	deposits := make([]domain.Deposit, 0, len(items))
	for _, item := range items {
		amount, fee, err := fiatAmounts(item)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, domain.Deposit{
			Timestamp: item.CreateTime,
			Currency:  item.FiatCurrency,
			Amount:    amount,
			Fee:       fee,
			Status:    fiatStatus(item.Status),
		})
	}
	return deposits, nil
}

func (c *BinanceClient) Withdrawals(ctx context.Context, w domain.Window) ([]domain.Withdrawal, error) {
	items, err := c.fiatHistory(ctx, binance.TransactionTypeWithdraw, w)
	if err != nil {
		return nil, err
	}
	withdrawals := make([]domain.Withdrawal, 0, len(items))
	for _, item := range items {
		amount, fee, err := fiatAmounts(item)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, domain.Withdrawal{
			Timestamp: item.CreateTime,
			Currency:  item.FiatCurrency,
			Amount:    amount,
			Fee:       fee,
			Status:    fiatStatus(item.Status),
			// fiat withdrawals carry no address; the order number is the
			// destination reference
			Address: item.OrderNo,
		})
	}
	return withdrawals, nil
}

func (c *BinanceClient) fiatHistory(ctx context.Context, transactionType binance.TransactionType, w domain.Window) ([]binance.FiatDepositWithdrawHistoryItem, error) {
	history, err := c.client.NewFiatDepositWithdrawHistoryService().
		TransactionType(transactionType).
		BeginTime(w.StartMs).
		EndTime(w.EndMs).
		Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "fiat history")
	}

	items := make([]binance.FiatDepositWithdrawHistoryItem, 0, len(history.Data))
	for _, item := range history.Data {
		if item.FiatCurrency != domain.EUR {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func fiatAmounts(item binance.FiatDepositWithdrawHistoryItem) (amount, fee decimal.Decimal, err error) {
	if amount, err = parseAmount("fiat history", "indicatedAmount", item.IndicatedAmount); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if fee, err = parseOptionalAmount("fiat history", "totalFee", item.TotalFee); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return amount, fee, nil
}

func fiatStatus(status string) string {
	if status == "Successful" {
		return domain.StatusCompleted
	}
	return strings.ToLower(status)
}

func (c *BinanceClient) Trades(ctx context.Context, market string, w domain.Window) ([]domain.Trade, error) {
	rows, err := c.client.NewListTradesService().
		Symbol(binanceSymbol(market)).
		StartTime(w.StartMs).
		EndTime(w.EndMs).
		Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "trades")
	}

	trades := make([]domain.Trade, 0, len(rows))
	for _, row := range rows {
		amount, err := parseAmount("trades", "qty", row.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount("trades", "price", row.Price)
		if err != nil {
			return nil, err
		}
		fee, err := parseOptionalAmount("trades", "commission", row.Commission)
		if err != nil {
			return nil, err
		}
		side := domain.SideSell
		if row.IsBuyer {
			side = domain.SideBuy
		}
		trades = append(trades, domain.Trade{
			ID:          strconv.FormatInt(row.ID, 10),
			Market:      market,
			Side:        side,
			Amount:      amount,
			Price:       price,
			Fee:         fee,
			FeeCurrency: row.CommissionAsset,
			Timestamp:   row.Time,
			Settled:     true, // the endpoint only returns executed fills
		})
	}
	return trades, nil
}

func (c *BinanceClient) Markets(ctx context.Context) ([]string, error) {
	info, err := c.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, wrapBinanceErr(err, "exchange info")
	}

	markets := make([]string, 0, 64)
	for _, symbol := range info.Symbols {
		if symbol.QuoteAsset != domain.EUR || symbol.Status != "TRADING" {
			continue
		}
		markets = append(markets, symbol.BaseAsset+"-"+domain.EUR)
	}
	return markets, nil
}

func (c *BinanceClient) Price(ctx context.Context, market string) (decimal.Decimal, error) {
	prices, err := c.client.NewListPricesService().Symbol(binanceSymbol(market)).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, wrapBinanceErr(err, "price")
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, errors.Errorf("no price returned for %s", market)
	}
	return parseAmount("price", "price", prices[0].Price)
}

// binanceSymbol converts "BTC-EUR" to Binance's "BTCEUR" form.
func binanceSymbol(market string) string {
	return strings.ReplaceAll(market, "-", "")
}

func wrapBinanceErr(err error, endpoint string) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == binanceRateLimitCode {
		return &domain.RateLimitError{}
	}
	return errors.Wrapf(err, "binance %s", endpoint)
}
