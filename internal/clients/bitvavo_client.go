package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"eurledger/internal/domain"
)

const (
	bitvavoBaseURL       = "https://api.bitvavo.com/v2"
	bitvavoTimeout       = 15 * time.Second
	bitvavoAccessWindow  = "10000"
	bitvavoRateLimitCode = 105
)

// BitvavoClient is a read-only client for the Bitvavo REST API, the primary
// EUR-settled provider. It implements sync.Provider and portfolio.Pricer.
type BitvavoClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewBitvavoClient(apiKey, apiSecret string) *BitvavoClient {
	return &BitvavoClient{
		baseURL:   bitvavoBaseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: bitvavoTimeout,
		},
	}
}

type bitvavoBalance struct {
	Symbol    string `json:"symbol"`
	Available string `json:"available"`
	InOrder   string `json:"inOrder"`
}

func (c *BitvavoClient) Balances(ctx context.Context) (domain.BalanceSnapshot, error) {
	var rows []bitvavoBalance
	if err := c.get(ctx, "/balance", nil, &rows); err != nil {
		return nil, err
	}

	snapshot := make(domain.BalanceSnapshot, len(rows))
	for _, row := range rows {
		if row.Symbol == "" {
			return nil, &domain.SchemaError{Endpoint: "/balance", Field: "symbol"}
		}
		available, err := parseAmount("/balance", "available", row.Available)
		if err != nil {
			return nil, err
		}
		inOrder, err := parseAmount("/balance", "inOrder", row.InOrder)
		if err != nil {
			return nil, err
		}
		snapshot[row.Symbol] = domain.AssetBalance{Available: available, InOrder: inOrder}
	}
	return snapshot, nil
}

type bitvavoHistoryItem struct {
	TransactionID    string `json:"transactionId"`
	Type             string `json:"type"`
	ExecutedAt       int64  `json:"executedAt"`
	Status           string `json:"status"`
	Market           string `json:"market"`
	SentCurrency     string `json:"sentCurrency"`
	SentAmount       string `json:"sentAmount"`
	ReceivedCurrency string `json:"receivedCurrency"`
	ReceivedAmount   string `json:"receivedAmount"`
	FeesCurrency     string `json:"feesCurrency"`
	FeesAmount       string `json:"feesAmount"`
}

type bitvavoHistoryPage struct {
	Items       []bitvavoHistoryItem `json:"items"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int                  `json:"totalPages"`
}

func (c *BitvavoClient) EventPage(ctx context.Context, page, pageSize int) (domain.EventPage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"maxItems": {strconv.Itoa(pageSize)},
	}
	var raw bitvavoHistoryPage
	if err := c.get(ctx, "/account/history", query, &raw); err != nil {
		return domain.EventPage{}, err
	}
	if raw.TotalPages < 1 {
		return domain.EventPage{}, &domain.SchemaError{Endpoint: "/account/history", Field: "totalPages"}
	}

	items := make([]domain.HistoryEvent, 0, len(raw.Items))
	for _, item := range raw.Items {
		if item.ExecutedAt <= 0 {
			return domain.EventPage{}, &domain.SchemaError{Endpoint: "/account/history", Field: "executedAt"}
		}
		ev := domain.HistoryEvent{
			TxID:             item.TransactionID,
			Type:             item.Type,
			ExecutedAt:       item.ExecutedAt,
			Status:           item.Status,
			Market:           item.Market,
			SentCurrency:     item.SentCurrency,
			ReceivedCurrency: item.ReceivedCurrency,
			FeeCurrency:      item.FeesCurrency,
		}
		var err error
		if ev.SentAmount, err = parseOptionalAmount("/account/history", "sentAmount", item.SentAmount); err != nil {
			return domain.EventPage{}, err
		}
		if ev.ReceivedAmount, err = parseOptionalAmount("/account/history", "receivedAmount", item.ReceivedAmount); err != nil {
			return domain.EventPage{}, err
		}
		if ev.FeeAmount, err = parseOptionalAmount("/account/history", "feesAmount", item.FeesAmount); err != nil {
			return domain.EventPage{}, err
		}
		items = append(items, ev)
	}

	return domain.EventPage{Items: items, CurrentPage: raw.CurrentPage, TotalPages: raw.TotalPages}, nil
}

type bitvavoTransfer struct {
	Timestamp int64  `json:"timestamp"`
	Symbol    string `json:"symbol"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	Status    string `json:"status"`
	Address   string `json:"address"`
}

func (c *BitvavoClient) Deposits(ctx context.Context, w domain.Window) ([]domain.Deposit, error) {
	rows, err := c.transfers(ctx, "/depositHistory", w)
	if err != nil {
		return nil, err
	}
	deposits := make([]domain.Deposit, 0, len(rows))
	for _, row := range rows {
		amount, fee, err := transferAmounts("/depositHistory", row)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, domain.Deposit{
			Timestamp: row.Timestamp,
			Currency:  row.Symbol,
			Amount:    amount,
			Fee:       fee,
			Status:    row.Status,
		})
	}
	return deposits, nil
}

func (c *BitvavoClient) Withdrawals(ctx context.Context, w domain.Window) ([]domain.Withdrawal, error) {
	rows, err := c.transfers(ctx, "/withdrawalHistory", w)
	if err != nil {
		return nil, err
	}
	withdrawals := make([]domain.Withdrawal, 0, len(rows))
	for _, row := range rows {
		amount, fee, err := transferAmounts("/withdrawalHistory", row)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, domain.Withdrawal{
			Timestamp: row.Timestamp,
			Currency:  row.Symbol,
			Amount:    amount,
			Fee:       fee,
			Status:    row.Status,
			Address:   row.Address,
		})
	}
	return withdrawals, nil
}

func (c *BitvavoClient) transfers(ctx context.Context, endpoint string, w domain.Window) ([]bitvavoTransfer, error) {
	query := url.Values{
		"start": {strconv.FormatInt(w.StartMs, 10)},
		"end":   {strconv.FormatInt(w.EndMs, 10)},
	}
	var rows []bitvavoTransfer
	if err := c.get(ctx, endpoint, query, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Timestamp <= 0 {
			return nil, &domain.SchemaError{Endpoint: endpoint, Field: "timestamp"}
		}
	}
	return rows, nil
}

func transferAmounts(endpoint string, row bitvavoTransfer) (amount, fee decimal.Decimal, err error) {
	if amount, err = parseAmount(endpoint, "amount", row.Amount); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if fee, err = parseOptionalAmount(endpoint, "fee", row.Fee); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return amount, fee, nil
}

type bitvavoTrade struct {
	ID          string `json:"id"`
	Market      string `json:"market"`
	Side        string `json:"side"`
	Amount      string `json:"amount"`
	Price       string `json:"price"`
	Fee         string `json:"fee"`
	FeeCurrency string `json:"feeCurrency"`
	Timestamp   int64  `json:"timestamp"`
	Settled     bool   `json:"settled"`
}

func (c *BitvavoClient) Trades(ctx context.Context, market string, w domain.Window) ([]domain.Trade, error) {
	query := url.Values{
		"market": {market},
		"start":  {strconv.FormatInt(w.StartMs, 10)},
		"end":    {strconv.FormatInt(w.EndMs, 10)},
	}
	var rows []bitvavoTrade
	if err := c.get(ctx, "/trades", query, &rows); err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			return nil, &domain.SchemaError{Endpoint: "/trades", Field: "id"}
		}
		amount, err := parseAmount("/trades", "amount", row.Amount)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount("/trades", "price", row.Price)
		if err != nil {
			return nil, err
		}
		fee, err := parseOptionalAmount("/trades", "fee", row.Fee)
		if err != nil {
			return nil, err
		}
		trades = append(trades, domain.Trade{
			ID:          row.ID,
			Market:      row.Market,
			Side:        row.Side,
			Amount:      amount,
			Price:       price,
			Fee:         fee,
			FeeCurrency: row.FeeCurrency,
			Timestamp:   row.Timestamp,
			Settled:     row.Settled,
		})
	}
	return trades, nil
}

type bitvavoMarket struct {
	Market string `json:"market"`
	Status string `json:"status"`
	Quote  string `json:"quote"`
}

func (c *BitvavoClient) Markets(ctx context.Context) ([]string, error) {
	var rows []bitvavoMarket
	if err := c.get(ctx, "/markets", nil, &rows); err != nil {
		return nil, err
	}
	markets := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Status != "trading" || row.Quote != domain.EUR {
			continue
		}
		markets = append(markets, row.Market)
	}
	return markets, nil
}

type bitvavoPrice struct {
	Market string `json:"market"`
	Price  string `json:"price"`
}

func (c *BitvavoClient) Price(ctx context.Context, market string) (decimal.Decimal, error) {
	query := url.Values{"market": {market}}
	var row bitvavoPrice
	if err := c.get(ctx, "/ticker/price", query, &row); err != nil {
		return decimal.Decimal{}, err
	}
	return parseAmount("/ticker/price", "price", row.Price)
}

type bitvavoError struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"error"`
}

// get issues one signed GET request and decodes the JSON response into out.
// HTTP 429 and the provider's rate-limit error code both surface as a
// RateLimitError carrying the announced reset time when parseable.
func (c *BitvavoClient) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	path := "/v2" + endpoint
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	requestURL := c.baseURL + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.Wrapf(err, "build request %s", endpoint)
	}

	timestamp := time.Now().UnixMilli()
	req.Header.Set("Bitvavo-Access-Key", c.apiKey)
	req.Header.Set("Bitvavo-Access-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("Bitvavo-Access-Signature", sign(c.apiSecret, timestamp, http.MethodGet, path, ""))
	req.Header.Set("Bitvavo-Access-Window", bitvavoAccessWindow)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read response from %s", endpoint)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{RetryAfter: resetAt(resp.Header)}
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr bitvavoError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorCode == bitvavoRateLimitCode {
			return &domain.RateLimitError{RetryAfter: resetAt(resp.Header)}
		}
		return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.SchemaError{Endpoint: endpoint, Field: "body"}
	}
	return nil
}

// sign computes the HMAC-SHA256 request signature over
// timestamp + method + path + body, hex encoded.
func sign(secret string, timestamp int64, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d%s%s%s", timestamp, method, path, body)
	return hex.EncodeToString(mac.Sum(nil))
}

func resetAt(header http.Header) time.Time {
	raw := header.Get("Bitvavo-Ratelimit-Resetat")
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func parseAmount(endpoint, field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, &domain.SchemaError{Endpoint: endpoint, Field: field}
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, &domain.SchemaError{Endpoint: endpoint, Field: field}
	}
	return amount, nil
}

// parseOptionalAmount treats an absent value as zero; fee and secondary
// legs are frequently omitted by the provider.
func parseOptionalAmount(endpoint, field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return parseAmount(endpoint, field, value)
}
