// Package setup is the terminal wizard generating a starter config file.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/domain"
)

const generatedConfigFile = "config.gen.yaml"

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
			MarginTop(1).
			MarginBottom(0)
)

func printHeader(step string) {
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("SENTINEL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and writes the result
// to config.gen.yaml. API keys are never asked for, they stay in the
// environment.
func RunTUI() error {
	var (
		platform      string
		pairsStr      string
		timeframe     string
		pollStr       string
		minEVStr      string
		riskStr       string
		leverageStr   string
		dryRun        bool
		strategistURL string
		strategistMdl string
		auditorURL    string
		auditorMdl    string
		telegram      bool
		webAddr       string
		confirm       bool
	)

	// defaults
	defaults := config.Default()
	pairsStr = "BTC_USDT, ETH_USDT"
	timeframe = defaults.Timeframe
	pollStr = defaults.PollInterval.String()
	minEVStr = strconv.FormatFloat(defaults.MinEV, 'f', -1, 64)
	riskStr = defaults.RiskPerTrade.String()
	leverageStr = strconv.Itoa(defaults.Leverage)
	dryRun = true
	strategistURL = defaults.Strategist.APIURL
	strategistMdl = defaults.Strategist.Model
	auditorURL = defaults.Auditor.APIURL
	auditorMdl = defaults.Auditor.Model
	telegram = true
	webAddr = defaults.Web.Addr

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("SENTINEL CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's wire up your signal engine.\n"))

	printHeader("STEP 1: PLATFORM")
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance Futures", "binance"),
					huh.NewOption("Bybit V5", "bybit"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("STEP 2: PAIRS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pairs").
				Description("Comma separated, BASE_QUOTE form (e.g. BTC_USDT, ETH_USDT)").
				Value(&pairsStr).
				Validate(validatePairs),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("STEP 3: TIMING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Candle Timeframe").
				Options(
					huh.NewOption("15 minutes", "15m"),
					huh.NewOption("1 hour", "1h"),
					huh.NewOption("4 hours", "4h"),
				).
				Value(&timeframe),
			huh.NewInput().
				Title("Sweep Interval").
				Description("Duration string (e.g. 1m, 5m, 15m)").
				Value(&pollStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("STEP 4: RISK")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum Expected Value").
				Description("Plans below this EV are not traded (e.g. 1.5)").
				Value(&minEVStr).
				Validate(validateFloat),
			huh.NewInput().
				Title("Risk Per Trade").
				Description("Quote currency risked per trade (e.g. 50)").
				Value(&riskStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Leverage").
				Value(&leverageStr).
				Validate(validateLeverage),
			huh.NewConfirm().
				Title("Paper trading (dry run)?").
				Description("Simulated orders only, no exchange keys needed").
				Affirmative("Yes, simulate").
				Negative("No, trade live").
				Value(&dryRun),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("STEP 5: MODELS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Strategist API URL").
				Description("OpenAI-compatible endpoint, key comes from STRATEGIST_API_KEY").
				Value(&strategistURL),
			huh.NewInput().
				Title("Strategist Model").
				Value(&strategistMdl),
			huh.NewInput().
				Title("Auditor API URL").
				Description("Key comes from AUDITOR_API_KEY").
				Value(&auditorURL),
			huh.NewInput().
				Title("Auditor Model").
				Value(&auditorMdl),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("STEP 6: ALERTS AND WEB")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Telegram alerts?").
				Description("Token and chat come from TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID").
				Value(&telegram),
			huh.NewInput().
				Title("Web Address").
				Description("Dashboard and control API listen address").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	printHeader("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Platform: %s\nPairs: %s\nTimeframe: %s\nInterval: %s\nMin EV: %s\nRisk: %s\nLeverage: %s\nDry run: %t\nTelegram: %t\nWeb: %s\n",
		platform, pairsStr, timeframe, pollStr, minEVStr, riskStr, leverageStr, dryRun, telegram, webAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	leverage, _ := strconv.Atoi(leverageStr)
	cfgTmp := config.ConfigTmp{
		Platform:     platform,
		Pairs:        splitPairs(pairsStr),
		Timeframe:    timeframe,
		PollInterval: pollStr,
		MinEV:        minEVStr,
		RiskPerTrade: riskStr,
		Leverage:     leverage,
		DryRun:       &dryRun,
		Strategist: config.ModelTmp{
			APIURL: strategistURL,
			Model:  strategistMdl,
		},
		Auditor: config.ModelTmp{
			APIURL: auditorURL,
			Model:  auditorMdl,
		},
		Telegram: &telegram,
		WebAddr:  webAddr,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(generatedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nStarting engine...", generatedConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func splitPairs(s string) []string {
	parts := strings.Split(s, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			pairs = append(pairs, trimmed)
		}
	}
	return pairs
}

func validatePairs(s string) error {
	pairs := splitPairs(s)
	if len(pairs) == 0 {
		return fmt.Errorf("at least one pair is required")
	}
	for _, p := range pairs {
		if _, err := domain.ParsePair(p); err != nil {
			return fmt.Errorf("invalid pair %q: must be BASE_QUOTE (e.g. BTC_USDT)", p)
		}
	}
	return nil
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("must be a valid number")
	}
	return nil
}

func validateDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThan(decimal.Zero) {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateLeverage(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}
