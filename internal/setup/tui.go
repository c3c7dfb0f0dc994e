// Package setup holds the interactive first-run wizard that writes the yaml
// configuration file.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

type wizardConfig struct {
	Platform        string   `yaml:"platform"`
	LedgerDir       string   `yaml:"ledger_dir,omitempty"`
	MaxMarkets      int      `yaml:"max_markets,omitempty"`
	PriorityMarkets []string `yaml:"priority_markets,omitempty"`
	ForceFull       bool     `yaml:"force_full,omitempty"`
}

// RunTUI walks the user through the initial configuration and writes it to
// filename. API credentials stay in the environment, never in the file.
func RunTUI(filename string) error {
	var (
		platform        string
		maxMarketsStr   string
		priorityMarkets string
		confirm         bool
	)

	maxMarketsStr = "25"
	priorityMarkets = "BTC-EUR,ETH-EUR"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("EURLEDGER SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Connect a EUR exchange account in a few steps.\n"))

	fmt.Println(stepStyle.Render("STEP 1: EXCHANGE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select exchange").
				Options(
					huh.NewOption("Bitvavo", "bitvavo"),
					huh.NewOption("Binance (EUR markets)", "binance"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: BACKFILL"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum markets to backfill trades for").
				Value(&maxMarketsStr).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Priority markets (comma-separated)").
				Value(&priorityMarkets),
		),
	).Run()
	if err != nil {
		return err
	}

	maxMarkets, _ := strconv.Atoi(maxMarketsStr)
	cfg := wizardConfig{
		Platform:        platform,
		MaxMarkets:      maxMarkets,
		PriorityMarkets: splitMarkets(priorityMarkets),
	}

	summary := fmt.Sprintf("platform: %s\nmax markets: %d\npriority: %s",
		cfg.Platform, cfg.MaxMarkets, strings.Join(cfg.PriorityMarkets, ", "))
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup aborted")
	}

	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, payload, 0o644); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\nConfiguration saved to %s", filename)))
	return nil
}

func splitMarkets(raw string) []string {
	var markets []string
	for _, market := range strings.Split(raw, ",") {
		if market = strings.TrimSpace(market); market != "" {
			markets = append(markets, market)
		}
	}
	return markets
}
