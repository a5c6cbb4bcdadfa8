package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/caisyy0514/sentinel/internal/domain"
)

// Config holds the runtime parameters of the signal engine. Secrets are
// never part of it, they come from the environment via Secrets.
type Config struct {
	Platform     string
	Pairs        []domain.Pair
	Timeframe    string
	KlineDepth   int
	PollInterval time.Duration
	Cooldown     time.Duration

	MinEV       float64
	PwinFloor   float64
	PwinCeiling float64

	RiskPerTrade decimal.Decimal
	Leverage     int
	DryRun       bool
	Testnet      bool

	HistoryLimit int
	LogLimit     int

	Strategist ModelConfig
	Auditor    ModelConfig
	Telegram   bool

	Web        WebConfig
	JournalDir string
	Autostart  bool
}

// ModelConfig selects an OpenAI-compatible chat endpoint for one of the
// two decision roles. The API key is read from the environment.
type ModelConfig struct {
	Enabled bool
	APIURL  string
	Model   string
}

// WebConfig controls the HTTP control surface. A non-empty TLSDomain
// switches the server to autocert on :443.
type WebConfig struct {
	Addr      string
	TLSDomain string
}

// ConfigTmp mirrors the yaml layout. Durations and decimals arrive as
// strings so absent fields can fall back to defaults.
type ConfigTmp struct {
	Platform     string   `yaml:"platform,omitempty"`
	Pairs        []string `yaml:"pairs,omitempty"`
	Timeframe    string   `yaml:"timeframe,omitempty"`
	KlineDepth   int      `yaml:"kline_depth,omitempty"`
	PollInterval string   `yaml:"poll_interval,omitempty"`
	Cooldown     string   `yaml:"cooldown,omitempty"`

	MinEV       string `yaml:"min_ev,omitempty"`
	PwinFloor   string `yaml:"pwin_floor,omitempty"`
	PwinCeiling string `yaml:"pwin_ceiling,omitempty"`

	RiskPerTrade string `yaml:"risk_per_trade,omitempty"`
	Leverage     int    `yaml:"leverage,omitempty"`
	DryRun       *bool  `yaml:"dry_run,omitempty"`
	Testnet      bool   `yaml:"testnet,omitempty"`

	HistoryLimit int `yaml:"history_limit,omitempty"`
	LogLimit     int `yaml:"log_limit,omitempty"`

	Strategist ModelTmp `yaml:"strategist,omitempty"`
	Auditor    ModelTmp `yaml:"auditor,omitempty"`
	Telegram   *bool    `yaml:"telegram,omitempty"`

	WebAddr    string `yaml:"web_addr,omitempty"`
	TLSDomain  string `yaml:"tls_domain,omitempty"`
	JournalDir string `yaml:"journal_dir,omitempty"`
	Autostart  bool   `yaml:"autostart,omitempty"`
}

// ModelTmp mirrors ModelConfig in yaml.
type ModelTmp struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	APIURL  string `yaml:"api_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// Default returns the configuration used when no yaml file is given.
func Default() Config {
	return Config{
		Platform: "binance",
		Pairs: []domain.Pair{
			{From: "BTC", To: "USDT"},
			{From: "ETH", To: "USDT"},
		},
		Timeframe:    "15m",
		KlineDepth:   100,
		PollInterval: 5 * time.Minute,
		Cooldown:     time.Minute,
		MinEV:        1.5,
		PwinFloor:    0.3,
		PwinCeiling:  0.7,
		RiskPerTrade: decimal.NewFromInt(50),
		Leverage:     5,
		DryRun:       true,
		HistoryLimit: 50,
		LogLimit:     200,
		Strategist: ModelConfig{
			Enabled: true,
			APIURL:  "https://api.deepseek.com/chat/completions",
			Model:   "deepseek-chat",
		},
		Auditor: ModelConfig{
			Enabled: true,
			APIURL:  "https://api.deepseek.com/chat/completions",
			Model:   "deepseek-chat",
		},
		Telegram:   true,
		Web:        WebConfig{Addr: ":8000"},
		JournalDir: "data/journal",
	}
}

// Load reads a yaml config from path, filling omitted fields with
// defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("cannot parse yaml config %s: %w", path, err)
	}

	return fromTmp(tmp)
}

func fromTmp(tmp ConfigTmp) (Config, error) {
	cfg := Default()

	if tmp.Platform != "" {
		cfg.Platform = tmp.Platform
	}
	if len(tmp.Pairs) > 0 {
		pairs := make([]domain.Pair, 0, len(tmp.Pairs))
		for _, p := range tmp.Pairs {
			pair, err := domain.ParsePair(p)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect 'pairs' entry in yaml config: %s, error: %w", p, err)
			}
			pairs = append(pairs, pair)
		}
		cfg.Pairs = pairs
	}
	if tmp.Timeframe != "" {
		cfg.Timeframe = tmp.Timeframe
	}
	if tmp.KlineDepth > 0 {
		cfg.KlineDepth = tmp.KlineDepth
	}

	var err error
	if cfg.PollInterval, err = durationOrDefault(tmp.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, fmt.Errorf("incorrect 'poll_interval' param in yaml config: %w", err)
	}
	if cfg.Cooldown, err = durationOrDefault(tmp.Cooldown, cfg.Cooldown); err != nil {
		return Config{}, fmt.Errorf("incorrect 'cooldown' param in yaml config: %w", err)
	}

	if cfg.MinEV, err = floatOrDefault(tmp.MinEV, cfg.MinEV); err != nil {
		return Config{}, fmt.Errorf("incorrect 'min_ev' param in yaml config: %w", err)
	}
	if cfg.PwinFloor, err = floatOrDefault(tmp.PwinFloor, cfg.PwinFloor); err != nil {
		return Config{}, fmt.Errorf("incorrect 'pwin_floor' param in yaml config: %w", err)
	}
	if cfg.PwinCeiling, err = floatOrDefault(tmp.PwinCeiling, cfg.PwinCeiling); err != nil {
		return Config{}, fmt.Errorf("incorrect 'pwin_ceiling' param in yaml config: %w", err)
	}

	if tmp.RiskPerTrade != "" {
		cfg.RiskPerTrade, err = decimal.NewFromString(tmp.RiskPerTrade)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'risk_per_trade' param in yaml config (correct format is 50), error: %w", err)
		}
	}
	if tmp.Leverage > 0 {
		cfg.Leverage = tmp.Leverage
	}
	if tmp.DryRun != nil {
		cfg.DryRun = *tmp.DryRun
	}
	cfg.Testnet = tmp.Testnet

	if tmp.HistoryLimit > 0 {
		cfg.HistoryLimit = tmp.HistoryLimit
	}
	if tmp.LogLimit > 0 {
		cfg.LogLimit = tmp.LogLimit
	}

	cfg.Strategist = mergeModel(cfg.Strategist, tmp.Strategist)
	cfg.Auditor = mergeModel(cfg.Auditor, tmp.Auditor)
	if tmp.Telegram != nil {
		cfg.Telegram = *tmp.Telegram
	}

	if tmp.WebAddr != "" {
		cfg.Web.Addr = tmp.WebAddr
	}
	cfg.Web.TLSDomain = tmp.TLSDomain
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	cfg.Autostart = tmp.Autostart

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeModel(base ModelConfig, tmp ModelTmp) ModelConfig {
	if tmp.Enabled != nil {
		base.Enabled = *tmp.Enabled
	}
	if tmp.APIURL != "" {
		base.APIURL = tmp.APIURL
	}
	if tmp.Model != "" {
		base.Model = tmp.Model
	}
	return base
}

func durationOrDefault(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func floatOrDefault(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	switch c.Platform {
	case "binance", "bybit":
	default:
		return fmt.Errorf("unsupported platform %q", c.Platform)
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one trading pair is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive")
	}
	if c.MinEV < 0 {
		return fmt.Errorf("min_ev must not be negative")
	}
	if c.PwinFloor < 0 || c.PwinCeiling > 1 || c.PwinFloor >= c.PwinCeiling {
		return fmt.Errorf("pwin bounds must satisfy 0 <= floor < ceiling <= 1")
	}
	if c.RiskPerTrade.IsNegative() {
		return fmt.Errorf("risk_per_trade must not be negative")
	}
	if c.Leverage < 1 {
		return fmt.Errorf("leverage must be at least 1")
	}
	return nil
}
