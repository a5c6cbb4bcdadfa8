// Command sentinel runs the trading signal engine together with its web
// control surface. The engine itself starts on boot when autostart is
// configured, otherwise it waits for a start request from the dashboard.
//
// Usage:
//
//	sentinel --config config.yaml
//	sentinel --setup (generates config.gen.yaml interactively)
//
// Environment variables, each needed only when the matching feature is on:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For the models: STRATEGIST_API_KEY, AUDITOR_API_KEY
//	For Telegram alerts: TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal"
	"github.com/caisyy0514/sentinel/internal/metrics"
	"github.com/caisyy0514/sentinel/internal/setup"
	"github.com/caisyy0514/sentinel/internal/storage/planjournal"
	"github.com/caisyy0514/sentinel/internal/web"
	"github.com/caisyy0514/sentinel/pkg/logring"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config, built-in defaults apply when empty")
	runSetup := flag.Bool("setup", false, "run the interactive config wizard first")
	autostart := flag.Bool("autostart", false, "start the engine immediately instead of waiting for the dashboard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		if *configPath == "" {
			*configPath = "config.gen.yaml"
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatal(err)
	}

	ring := logring.New(cfg.LogLimit)
	logger, err := zap.NewProduction(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, logring.NewCore(ring, zapcore.InfoLevel))
	}))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	journal, err := planjournal.Open(cfg.JournalDir)
	if err != nil {
		logger.Fatal("failed to open plan journal", zap.Error(err))
	}
	defer journal.Close()

	m := metrics.NewRegistry()
	controller := internal.NewController(internal.NewDepsBuilder(secrets, journal), ring, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Autostart || *autostart {
		if res := controller.Start(cfg); res.Outcome != internal.StartOK {
			logger.Warn("engine did not autostart",
				zap.String("outcome", string(res.Outcome)),
				zap.String("detail", res.Detail))
		}
	}

	server := web.NewServer(cfg, controller, journal, m.Handler(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cfg.Web.TLSDomain != "" {
			return server.StartWithAutoTLS(gctx, cfg.Web.TLSDomain, "")
		}
		return server.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("web server stopped with error", zap.Error(err))
	}

	controller.Stop()
	logger.Info("shutdown complete")
}
