package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/clients"
	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/services/decision"
	"github.com/caisyy0514/sentinel/internal/services/market"
	"github.com/caisyy0514/sentinel/internal/services/notify"
	"github.com/caisyy0514/sentinel/internal/services/trader"
)

// MarketProvider supplies a validated snapshot for one pair.
type MarketProvider interface {
	Fetch(ctx context.Context, pair domain.Pair) (*domain.MarketSnapshot, error)
}

// PlanPipeline turns a snapshot into a tactical plan.
type PlanPipeline interface {
	GeneratePlan(ctx context.Context, snapshot *domain.MarketSnapshot) (domain.TacticalPlan, error)
}

// OrderExecutor places the orders a plan calls for.
type OrderExecutor interface {
	Execute(ctx context.Context, plan domain.TacticalPlan) (*domain.ExecutionReceipt, error)
}

// AlertNotifier delivers signal alerts to operators.
type AlertNotifier interface {
	Alert(ctx context.Context, text string) error
}

// PlanJournal persists plans for streaming and restart recovery.
type PlanJournal interface {
	Save(plan domain.TacticalPlan) error
}

// Deps is the dependency set backing one engine run. The controller builds
// a fresh set on every start and closes it on stop.
type Deps struct {
	Provider MarketProvider
	Pipeline PlanPipeline
	Executor OrderExecutor
	Notifier AlertNotifier
	Journal  PlanJournal

	closers []func() error
}

// Close releases per-run resources. Safe on a nil or partially built set.
func (d *Deps) Close(logger *zap.Logger) {
	if d == nil {
		return
	}
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			logger.Warn("dependency cleanup failed", zap.Error(err))
		}
	}
}

// NewDepsBuilder returns the production wiring. The plan journal is
// process-wide and shared with the web layer, so it is injected here
// instead of being opened per run.
func NewDepsBuilder(secrets config.Secrets, journal PlanJournal) DepsBuilder {
	return func(cfg config.Config, logger *zap.Logger) (*Deps, error) {
		deps := &Deps{Journal: journal}

		if err := buildPlatform(cfg, secrets, logger, deps); err != nil {
			return nil, err
		}
		deps.Pipeline = buildPipeline(cfg, secrets, logger)
		deps.Notifier = buildNotifier(cfg, secrets, logger)

		return deps, nil
	}
}

// buildPlatform wires the market data source and the order executor for
// the configured exchange. Dry run keeps the exchange for data but routes
// orders to the simulator.
func buildPlatform(cfg config.Config, secrets config.Secrets, logger *zap.Logger, deps *Deps) error {
	budget := domain.NewRiskBudget(cfg.RiskPerTrade)

	switch cfg.Platform {
	case "binance":
		if !cfg.DryRun && (secrets.BinanceAPIKey == "" || secrets.BinanceAPISecret == "") {
			return fmt.Errorf("live trading on binance requires BINANCE_API_KEY and BINANCE_API_SECRET")
		}
		client := clients.NewBinanceFuturesClient(secrets.BinanceAPIKey, secrets.BinanceAPISecret, cfg.Testnet)
		deps.Provider = market.NewCollector(market.NewBinanceSource(client, cfg.Timeframe, cfg.KlineDepth))
		if !cfg.DryRun {
			deps.Executor = trader.NewBinanceTrader(client, budget, cfg.Leverage)
		}
		deps.closers = append(deps.closers, func() error {
			client.HTTPClient.CloseIdleConnections()
			return nil
		})
	case "bybit":
		if !cfg.DryRun && (secrets.BybitAPIKey == "" || secrets.BybitAPISecret == "") {
			return fmt.Errorf("live trading on bybit requires BYBIT_API_KEY and BYBIT_API_SECRET")
		}
		client := clients.NewBybitClient(secrets.BybitAPIKey, secrets.BybitAPISecret, cfg.Testnet)
		deps.Provider = market.NewCollector(market.NewBybitSource(client, cfg.Timeframe, cfg.KlineDepth))
		if !cfg.DryRun {
			deps.Executor = trader.NewBybitTrader(client, budget, cfg.Leverage)
		}
	default:
		return fmt.Errorf("unsupported platform: %s", cfg.Platform)
	}

	if cfg.DryRun {
		deps.Executor = trader.NewSimulateTrader(budget, cfg.Leverage, logger)
		logger.Info("dry run enabled, orders go to the simulator")
	}

	return nil
}

// buildPipeline assembles proposer, auditor and the EV gate. Either stage
// falls back to its rule implementation when the model is disabled or has
// no key.
func buildPipeline(cfg config.Config, secrets config.Secrets, logger *zap.Logger) *decision.Pipeline {
	var proposer decision.ProposalSource = decision.NewRuleProposer()
	if cfg.Strategist.Enabled && secrets.StrategistAPIKey != "" {
		caller := clients.NewOpenAICompatibleClient(cfg.Strategist.APIURL, secrets.StrategistAPIKey, cfg.Strategist.Model)
		proposer = decision.NewModelProposer(caller, logger)
		logger.Info("strategist model enabled", zap.String("model", caller.Name()))
	} else {
		logger.Info("strategist model disabled, using rule proposer")
	}

	var auditor decision.AuditSource = decision.NewRuleAuditor()
	if cfg.Auditor.Enabled && secrets.AuditorAPIKey != "" {
		caller := clients.NewOpenAICompatibleClient(cfg.Auditor.APIURL, secrets.AuditorAPIKey, cfg.Auditor.Model)
		auditor = decision.NewModelAuditor(caller, logger)
		logger.Info("auditor model enabled", zap.String("model", caller.Name()))
	} else {
		logger.Info("auditor model disabled, using rule auditor")
	}

	return decision.NewPipeline(proposer, auditor,
		decision.NewAdjudicator(cfg.MinEV, cfg.PwinFloor, cfg.PwinCeiling))
}

// buildNotifier wires Telegram when it is enabled and has credentials.
func buildNotifier(cfg config.Config, secrets config.Secrets, logger *zap.Logger) AlertNotifier {
	if cfg.Telegram && secrets.TelegramToken != "" && secrets.TelegramChatID != "" {
		return notify.NewTelegram(secrets.TelegramToken, secrets.TelegramChatID, logger)
	}

	logger.Info("telegram alerts disabled")
	return notify.Noop{}
}
