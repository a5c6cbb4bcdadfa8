// Package internal wires the decision pipeline, market data and order
// execution into a supervised sweep loop with a start/stop lifecycle.
package internal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/metrics"
)

// Phase is the observable state of the sweep loop.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseSleeping Phase = "sleeping"
	PhaseStopping Phase = "stopping"
	PhaseStopped  Phase = "stopped"
)

// SweepLoop walks the configured pairs on a fixed interval, producing a
// tactical plan per pair and executing the ones that clear the expected
// value bar. Phase and the pair currently being analyzed are published
// through atomics so status queries never touch the loop.
type SweepLoop struct {
	pairs    []domain.Pair
	interval time.Duration
	cooldown time.Duration

	deps    *Deps
	history *PlanHistory
	metrics *metrics.Registry
	logger  *zap.Logger

	phase   atomic.Value
	current atomic.Value
}

// NewSweepLoop assembles a loop from an already built dependency set.
func NewSweepLoop(cfg config.Config, deps *Deps, history *PlanHistory, m *metrics.Registry, logger *zap.Logger) *SweepLoop {
	l := &SweepLoop{
		pairs:    cfg.Pairs,
		interval: cfg.PollInterval,
		cooldown: cfg.Cooldown,
		deps:     deps,
		history:  history,
		metrics:  m,
		logger:   logger,
	}
	l.phase.Store(PhaseIdle)
	l.current.Store("")
	return l
}

// Run sweeps until ctx is cancelled. The first sweep starts immediately,
// later ones are separated by the poll interval. A sweep that fails for
// an unexpected reason is logged and followed by a cooldown instead of
// taking the process down.
func (l *SweepLoop) Run(ctx context.Context) error {
	l.metrics.LoopRunning.Set(1)
	defer l.metrics.LoopRunning.Set(0)
	defer l.setCurrent("")
	defer l.setPhase(PhaseStopped)

	l.logger.Info("sweep loop started",
		zap.Int("pairs", len(l.pairs)),
		zap.Duration("interval", l.interval))

	for {
		err := l.sweep(ctx)
		switch {
		case err == nil:
			l.metrics.SweepsTotal.Inc()
			if !l.pause(ctx, l.interval) {
				return ctx.Err()
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			l.setPhase(PhaseStopping)
			l.logger.Info("sweep loop cancelled")
			return err
		default:
			l.metrics.CycleCrashes.Inc()
			l.logger.Error("sweep failed, cooling down",
				zap.Error(err),
				zap.Duration("cooldown", l.cooldown))
			if !l.pause(ctx, l.cooldown) {
				return ctx.Err()
			}
		}
	}
}

// sweep runs one pass over all pairs. Panics are converted to errors so
// a broken cycle cools down instead of killing the loop goroutine.
func (l *SweepLoop) sweep(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("sweep panic: %v", r)
		}
	}()

	l.setPhase(PhaseRunning)
	for _, pair := range l.pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.processPair(ctx, pair); err != nil {
			return err
		}
	}
	return nil
}

// processPair fetches market data and runs the decision pipeline for one
// pair. Fetch failures skip the pair, they never abort the sweep.
func (l *SweepLoop) processPair(ctx context.Context, pair domain.Pair) error {
	l.setCurrent(pair.String())
	defer l.setCurrent("")

	l.logger.Info("analyzing", zap.String("pair", pair.String()))

	start := time.Now()
	snapshot, err := l.deps.Provider.Fetch(ctx, pair)
	l.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		l.metrics.FetchFailures.Inc()
		l.logger.Warn("market data unavailable, skipping pair",
			zap.String("pair", pair.String()),
			zap.Error(err))
		return nil
	}

	plan, err := l.deps.Pipeline.GeneratePlan(ctx, snapshot)
	if err != nil {
		return errors.Wrapf(err, "plan generation failed for %s", pair)
	}
	// shutdown began while deciding, discard the plan
	if err := ctx.Err(); err != nil {
		return err
	}

	l.record(plan)

	if !plan.ShouldTrade {
		return nil
	}
	l.alert(ctx, plan)
	l.execute(ctx, plan)
	return nil
}

func (l *SweepLoop) record(plan domain.TacticalPlan) {
	l.history.Add(plan)
	l.metrics.ObservePlan(plan.Action.String(), plan.ShouldTrade)

	if l.deps.Journal != nil {
		if err := l.deps.Journal.Save(plan); err != nil {
			l.logger.Warn("cannot journal plan",
				zap.String("symbol", plan.Symbol),
				zap.Error(err))
		}
	}

	l.logger.Info("plan ready",
		zap.String("symbol", plan.Symbol),
		zap.String("action", plan.Action.String()),
		zap.Float64("ev", plan.ExpectedValue),
		zap.Bool("execute", plan.ShouldTrade),
		zap.String("rationale", plan.Rationale))
}

func (l *SweepLoop) alert(ctx context.Context, plan domain.TacticalPlan) {
	if l.deps.Notifier == nil {
		return
	}
	if err := l.deps.Notifier.Alert(ctx, formatAlert(plan)); err != nil {
		l.metrics.AlertFailures.Inc()
		l.logger.Warn("alert delivery failed",
			zap.String("symbol", plan.Symbol),
			zap.Error(err))
	}
}

func (l *SweepLoop) execute(ctx context.Context, plan domain.TacticalPlan) {
	if l.deps.Executor == nil {
		return
	}
	receipt, err := l.deps.Executor.Execute(ctx, plan)
	if err != nil {
		l.metrics.ExecutionFailures.Inc()
		l.logger.Error("order placement failed",
			zap.String("symbol", plan.Symbol),
			zap.Error(err))
		return
	}
	l.logger.Info("order placed",
		zap.String("symbol", receipt.Symbol),
		zap.String("order_id", receipt.OrderID),
		zap.String("qty", receipt.Quantity.String()),
		zap.Bool("simulated", receipt.Simulated))
}

// pause sleeps for d, returning false when ctx is cancelled first.
func (l *SweepLoop) pause(ctx context.Context, d time.Duration) bool {
	l.setPhase(PhaseSleeping)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		l.setPhase(PhaseStopping)
		return false
	case <-timer.C:
		return true
	}
}

// Phase returns the loop state without blocking the loop.
func (l *SweepLoop) Phase() Phase {
	if v, ok := l.phase.Load().(Phase); ok {
		return v
	}
	return PhaseIdle
}

// CurrentPair returns the pair being analyzed, or "" between pairs.
func (l *SweepLoop) CurrentPair() string {
	if v, ok := l.current.Load().(string); ok {
		return v
	}
	return ""
}

func (l *SweepLoop) setPhase(p Phase)    { l.phase.Store(p) }
func (l *SweepLoop) setCurrent(s string) { l.current.Store(s) }

func formatAlert(plan domain.TacticalPlan) string {
	return fmt.Sprintf("🚨 SIGNAL %s 🚨\nAction: %s\nEntry: %.4f\nStop: %.4f\nTarget: %.4f\nEV: %.2f\n%s",
		plan.Symbol, plan.Action, plan.EntryPrice, plan.StopLoss, plan.TakeProfit, plan.ExpectedValue, plan.Rationale)
}
