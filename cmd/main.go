// Command eurledger reconstructs the EUR cash ledger of an exchange account
// from its read-only REST history and prints the resulting transactions and
// portfolio valuation.
//
// Usage:
//
//	eurledger --config config.yaml
//	eurledger --platform bitvavo --full
//	eurledger setup (interactive configuration wizard)
//
// Required environment variables:
//
//	For Bitvavo: BITVAVO_API_KEY, BITVAVO_API_SECRET
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"eurledger/config"
	"eurledger/internal/clients"
	"eurledger/internal/services/portfolio"
	"eurledger/internal/services/ratelimit"
	syncsvc "eurledger/internal/services/sync"
	"eurledger/internal/setup"
	"eurledger/internal/storage/ledgerlog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	amountStyle = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

type provider interface {
	syncsvc.Provider
	portfolio.Pricer
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI("config.yaml"); err != nil {
			log.Fatal(err)
		}
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	client, err := newClient(cfg.Platform)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(context.Background(), cfg, client, logger); err != nil {
		logger.Fatal("sync failed", zap.Error(err))
	}
}

func newClient(platform string) (provider, error) {
	switch platform {
	case "bitvavo":
		apiKey, apiSecret := os.Getenv("BITVAVO_API_KEY"), os.Getenv("BITVAVO_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BITVAVO_API_KEY and BITVAVO_API_SECRET environment variables must be set")
		}
		return clients.NewBitvavoClient(apiKey, apiSecret), nil
	case "binance":
		apiKey, apiSecret := os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return clients.NewBinanceClient(apiKey, apiSecret), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

func run(ctx context.Context, cfg config.Config, client provider, logger *zap.Logger) error {
	store, err := ledgerlog.New(cfg.LedgerDir)
	if err != nil {
		return err
	}
	defer store.Close()

	var sinceMs int64
	if last, ok, err := store.Last(); err != nil {
		return err
	} else if ok {
		sinceMs = last.BoundaryMs
	}

	limiter := ratelimit.New(cfg.MinRequestInterval, logger)
	orchestrator := syncsvc.New(client, limiter, syncsvc.Config{
		IncrementalBudget: cfg.IncrementalBudget,
		FullBudget:        cfg.FullBudget,
		EventPageSize:     cfg.EventPageSize,
		TransferPageSize:  cfg.TransferPageSize,
		TradePageSize:     cfg.TradePageSize,
		DiscoveryPages:    cfg.DiscoveryPages,
		MaxMarkets:        cfg.MaxMarkets,
		PriorityMarkets:   cfg.PriorityMarkets,
		BackfillStartMs:   cfg.BackfillStart.UnixMilli(),
	}, logger)

	started := time.Now().UnixMilli()
	result, err := orchestrator.Synchronize(ctx, sinceMs, cfg.ForceFull)
	if err != nil {
		return err
	}

	if err := store.Save(storeEntry(started, result)); err != nil {
		logger.Warn("failed to persist sync result", zap.Error(err))
	}

	fmt.Println(renderLedger(result))

	balances, err := client.Balances(ctx)
	if err != nil {
		return err
	}
	positions, err := portfolio.NewValuer(client, limiter, cfg.PortfolioBudget, logger).Value(ctx, balances)
	if err != nil {
		return err
	}
	fmt.Println(renderPortfolio(positions))
	return nil
}
