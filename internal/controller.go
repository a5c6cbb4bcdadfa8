package internal

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/metrics"
	"github.com/caisyy0514/sentinel/pkg/logring"
)

const defaultStopWait = 30 * time.Second

// StartOutcome classifies the result of a start request.
type StartOutcome string

const (
	StartOK             StartOutcome = "started"
	StartAlreadyRunning StartOutcome = "already_running"
	StartFailed         StartOutcome = "start_failed"
)

// StartResult is returned by Start and serialized on the control API.
type StartResult struct {
	Outcome StartOutcome `json:"outcome"`
	Detail  string       `json:"detail,omitempty"`
}

// StopOutcome classifies the result of a stop request.
type StopOutcome string

const (
	StopOK         StopOutcome = "stopped"
	StopNotRunning StopOutcome = "not_running"
)

// StopResult is returned by Stop.
type StopResult struct {
	Outcome StopOutcome `json:"outcome"`
}

// Status is a consistent snapshot of the engine for status queries. It
// keeps reporting the last run's plans and logs after a stop.
type Status struct {
	Running       bool                  `json:"running"`
	Phase         Phase                 `json:"phase"`
	CurrentSymbol string                `json:"current_symbol"`
	RecentLogs    []string              `json:"recent_logs"`
	RecentPlans   []domain.TacticalPlan `json:"recent_plans"`
}

// DepsBuilder constructs the per-run dependency set for a config. The
// controller calls it on every successful start.
type DepsBuilder func(cfg config.Config, logger *zap.Logger) (*Deps, error)

// Controller owns the sweep loop lifecycle. Start and Stop are
// idempotent and safe to call from concurrent HTTP handlers.
type Controller struct {
	build    DepsBuilder
	logs     *logring.Ring
	metrics  *metrics.Registry
	logger   *zap.Logger
	stopWait time.Duration

	mu sync.Mutex // serializes Start and Stop

	viewMu  sync.RWMutex // guards the fields below for Status readers
	running bool
	loop    *SweepLoop
	history *PlanHistory
	cancel  context.CancelFunc
	done    chan struct{}
	deps    *Deps
}

// NewController creates a controller in the stopped state.
func NewController(build DepsBuilder, logs *logring.Ring, m *metrics.Registry, logger *zap.Logger) *Controller {
	return &Controller{
		build:    build,
		logs:     logs,
		metrics:  m,
		logger:   logger,
		stopWait: defaultStopWait,
	}
}

// Start builds dependencies for cfg and launches the sweep loop. A
// second start while running is a no-op reported as such.
func (c *Controller) Start(cfg config.Config) StartResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning() {
		c.logger.Info("start requested while already running")
		return StartResult{Outcome: StartAlreadyRunning}
	}

	if err := cfg.Validate(); err != nil {
		c.logger.Error("rejecting start, invalid config", zap.Error(err))
		return StartResult{Outcome: StartFailed, Detail: err.Error()}
	}

	deps, err := c.build(cfg, c.logger)
	if err != nil {
		c.logger.Error("cannot initialize dependencies", zap.Error(err))
		return StartResult{Outcome: StartFailed, Detail: err.Error()}
	}

	history := NewPlanHistory(cfg.HistoryLimit)
	loop := NewSweepLoop(cfg, deps, history, c.metrics, c.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("sweep loop exited", zap.Error(err))
		}
	}()

	c.viewMu.Lock()
	c.running = true
	c.loop = loop
	c.history = history
	c.cancel = cancel
	c.done = done
	c.deps = deps
	c.viewMu.Unlock()

	c.logger.Info("engine started",
		zap.String("platform", cfg.Platform),
		zap.Int("pairs", len(cfg.Pairs)))
	return StartResult{Outcome: StartOK}
}

// Stop cancels the loop and waits for it to drain, bounded by the stop
// wait. Stopping an already stopped engine is a no-op.
func (c *Controller) Stop() StopResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning() {
		c.logger.Info("stop requested while not running")
		return StopResult{Outcome: StopNotRunning}
	}

	c.logger.Info("stopping sweep loop")
	c.cancel()

	select {
	case <-c.done:
	case <-time.After(c.stopWait):
		c.logger.Warn("sweep loop still busy after stop wait, detaching",
			zap.Duration("waited", c.stopWait))
	}

	c.deps.Close(c.logger)

	c.viewMu.Lock()
	c.running = false
	// loop and history stay so Status keeps showing the last run
	c.cancel = nil
	c.done = nil
	c.deps = nil
	c.viewMu.Unlock()

	c.logger.Info("engine stopped")
	return StopResult{Outcome: StopOK}
}

// Status never blocks the loop and always succeeds.
func (c *Controller) Status() Status {
	c.viewMu.RLock()
	running, loop, history := c.running, c.loop, c.history
	c.viewMu.RUnlock()

	st := Status{
		Running:     running,
		Phase:       PhaseIdle,
		RecentLogs:  []string{},
		RecentPlans: []domain.TacticalPlan{},
	}
	if c.logs != nil {
		st.RecentLogs = c.logs.Lines()
	}
	if loop != nil {
		st.Phase = loop.Phase()
		st.CurrentSymbol = loop.CurrentPair()
	}
	if history != nil {
		st.RecentPlans = history.Recent()
	}
	return st
}

func (c *Controller) isRunning() bool {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.running
}
