package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults. Budgets differ per mode: a full backfill issues far more
// requests than an incremental catch-up, and portfolio valuation sits in
// between.
const (
	defaultMinRequestInterval = 250 * time.Millisecond
	defaultIncrementalBudget  = 25
	defaultFullBudget         = 400
	defaultPortfolioBudget    = 60
	defaultEventPageSize      = 100
	defaultTransferPageSize   = 500
	defaultTradePageSize      = 500
	defaultDiscoveryPages     = 3
	defaultMaxMarkets         = 25
	defaultLedgerDir          = "./wal/ledger"
)

// defaultBackfillStart is the provider's launch; no account history can
// predate it.
var defaultBackfillStart = time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)

var defaultPriorityMarkets = []string{"BTC-EUR", "ETH-EUR"}

type Config struct {
	Platform           string
	LedgerDir          string
	MinRequestInterval time.Duration
	IncrementalBudget  int
	FullBudget         int
	PortfolioBudget    int
	EventPageSize      int
	TransferPageSize   int
	TradePageSize      int
	DiscoveryPages     int
	MaxMarkets         int
	PriorityMarkets    []string
	ForceFull          bool
	BackfillStart      time.Time
}

type configTmp struct {
	Platform           string        `yaml:"platform"`
	LedgerDir          string        `yaml:"ledger_dir,omitempty"`
	MinRequestInterval time.Duration `yaml:"min_request_interval,omitempty"`
	IncrementalBudget  int           `yaml:"incremental_budget,omitempty"`
	FullBudget         int           `yaml:"full_budget,omitempty"`
	PortfolioBudget    int           `yaml:"portfolio_budget,omitempty"`
	MaxMarkets         int           `yaml:"max_markets,omitempty"`
	PriorityMarkets    []string      `yaml:"priority_markets,omitempty"`
	ForceFull          bool          `yaml:"force_full,omitempty"`
	BackfillStart      string        `yaml:"backfill_start,omitempty"`
}

// Get loads configuration from a yaml file when --config is provided and
// from CLI flags otherwise.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	platform := flag.String("platform", "bitvavo", "exchange platform: bitvavo or binance")
	forceFull := flag.Bool("full", false, "force a full resync from the account's inception")
	priority := flag.String("priority", strings.Join(defaultPriorityMarkets, ","), "comma-separated priority markets, example: BTC-EUR,ETH-EUR")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := withDefaults(Config{
		Platform:  *platform,
		ForceFull: *forceFull,
	})
	if *priority != "" {
		cfg.PriorityMarkets = strings.Split(*priority, ",")
	}
	return validate(cfg)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := withDefaults(Config{
		Platform:           tmp.Platform,
		LedgerDir:          tmp.LedgerDir,
		MinRequestInterval: tmp.MinRequestInterval,
		IncrementalBudget:  tmp.IncrementalBudget,
		FullBudget:         tmp.FullBudget,
		PortfolioBudget:    tmp.PortfolioBudget,
		MaxMarkets:         tmp.MaxMarkets,
		PriorityMarkets:    tmp.PriorityMarkets,
		ForceFull:          tmp.ForceFull,
	})
	if tmp.BackfillStart != "" {
		start, err := time.Parse("2006-01-02", tmp.BackfillStart)
		if err != nil {
			return Config{}, fmt.Errorf("invalid backfill_start %q, want YYYY-MM-DD", tmp.BackfillStart)
		}
		cfg.BackfillStart = start
	}
	return validate(cfg)
}

func withDefaults(cfg Config) Config {
	if cfg.LedgerDir == "" {
		cfg.LedgerDir = defaultLedgerDir
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = defaultMinRequestInterval
	}
	if cfg.IncrementalBudget <= 0 {
		cfg.IncrementalBudget = defaultIncrementalBudget
	}
	if cfg.FullBudget <= 0 {
		cfg.FullBudget = defaultFullBudget
	}
	if cfg.PortfolioBudget <= 0 {
		cfg.PortfolioBudget = defaultPortfolioBudget
	}
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = defaultMaxMarkets
	}
	if len(cfg.PriorityMarkets) == 0 {
		cfg.PriorityMarkets = defaultPriorityMarkets
	}
	if cfg.BackfillStart.IsZero() {
		cfg.BackfillStart = defaultBackfillStart
	}
	cfg.EventPageSize = defaultEventPageSize
	cfg.TransferPageSize = defaultTransferPageSize
	cfg.TradePageSize = defaultTradePageSize
	cfg.DiscoveryPages = defaultDiscoveryPages
	return cfg
}

func validate(cfg Config) (Config, error) {
	switch cfg.Platform {
	case "bitvavo", "binance":
	default:
		return Config{}, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
	for _, market := range cfg.PriorityMarkets {
		if !strings.HasSuffix(market, "-EUR") {
			return Config{}, fmt.Errorf("priority market %q is not EUR-quoted", market)
		}
	}
	return cfg, nil
}
