package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/domain"
	"github.com/caisyy0514/sentinel/internal/metrics"
)

func snapshotFor(pair domain.Pair) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Pair:        pair,
		Price:       decimal.NewFromInt(100),
		Bid:         decimal.NewFromInt(99),
		Ask:         decimal.NewFromInt(101),
		SpreadRatio: decimal.NewFromFloat(0.02),
		FetchedAt:   time.Now(),
	}
}

func waitPlanFor(snapshot *domain.MarketSnapshot) domain.TacticalPlan {
	return domain.TacticalPlan{
		Timestamp: time.Now(),
		Symbol:    snapshot.Pair.String(),
		Action:    domain.ActionWait,
		Rationale: "no edge",
	}
}

func tradablePlanFor(snapshot *domain.MarketSnapshot) domain.TacticalPlan {
	return domain.TacticalPlan{
		Timestamp:     time.Now(),
		Symbol:        snapshot.Pair.String(),
		Action:        domain.ActionLong,
		ShouldTrade:   true,
		EntryPrice:    100,
		StopLoss:      99,
		TakeProfit:    103,
		ExpectedValue: 1.8,
		Rationale:     "execute",
	}
}

type stubProvider struct {
	mu   sync.Mutex
	errs map[string]error
	seen []string
}

func (s *stubProvider) Fetch(_ context.Context, pair domain.Pair) (*domain.MarketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, pair.String())
	if err := s.errs[pair.String()]; err != nil {
		return nil, err
	}
	return snapshotFor(pair), nil
}

type stubPipeline struct {
	plan   func(*domain.MarketSnapshot) domain.TacticalPlan
	err    error
	onCall func()
}

func (s *stubPipeline) GeneratePlan(_ context.Context, snapshot *domain.MarketSnapshot) (domain.TacticalPlan, error) {
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return domain.TacticalPlan{}, s.err
	}
	if s.plan != nil {
		return s.plan(snapshot), nil
	}
	return waitPlanFor(snapshot), nil
}

type stubExecutor struct {
	mu       sync.Mutex
	err      error
	executed []string
}

func (s *stubExecutor) Execute(_ context.Context, plan domain.TacticalPlan) (*domain.ExecutionReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed = append(s.executed, plan.Symbol)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ExecutionReceipt{
		OrderID:   "stub-order",
		Symbol:    plan.Symbol,
		Action:    plan.Action,
		Quantity:  decimal.NewFromInt(1),
		Simulated: true,
		PlacedAt:  time.Now(),
	}, nil
}

type stubNotifier struct {
	mu     sync.Mutex
	err    error
	alerts []string
}

func (s *stubNotifier) Alert(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, text)
	return s.err
}

type stubJournal struct {
	mu    sync.Mutex
	saved []domain.TacticalPlan
}

func (s *stubJournal) Save(plan domain.TacticalPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, plan)
	return nil
}

func testLoopConfig(pairs ...domain.Pair) config.Config {
	cfg := config.Default()
	cfg.Pairs = pairs
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Cooldown = 5 * time.Millisecond
	return cfg
}

func newTestLoop(deps *Deps, pairs ...domain.Pair) (*SweepLoop, *PlanHistory) {
	history := NewPlanHistory(10)
	loop := NewSweepLoop(testLoopConfig(pairs...), deps, history, metrics.NewRegistry(), zap.NewNop())
	return loop, history
}

var (
	btc = domain.Pair{From: "BTC", To: "USDT"}
	eth = domain.Pair{From: "ETH", To: "USDT"}
)

func TestSweepProcessesAllPairs(t *testing.T) {
	provider := &stubProvider{}
	journal := &stubJournal{}
	executor := &stubExecutor{}
	deps := &Deps{
		Provider: provider,
		Pipeline: &stubPipeline{},
		Executor: executor,
		Journal:  journal,
	}

	loop, history := newTestLoop(deps, btc, eth)
	require.NoError(t, loop.sweep(context.Background()))

	require.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, provider.seen)
	require.Equal(t, 2, history.Len())
	require.Len(t, journal.saved, 2)
	require.Empty(t, executor.executed, "WAIT plans must not reach the executor")
}

func TestSweepSkipsPairWhenFetchFails(t *testing.T) {
	provider := &stubProvider{errs: map[string]error{"BTC_USDT": context.DeadlineExceeded}}
	deps := &Deps{Provider: provider, Pipeline: &stubPipeline{}}

	loop, history := newTestLoop(deps, btc, eth)
	require.NoError(t, loop.sweep(context.Background()))

	require.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, provider.seen)
	require.Equal(t, 1, history.Len())
	require.Equal(t, "ETH_USDT", history.Recent()[0].Symbol)
}

func TestSweepAbortsOnPipelineError(t *testing.T) {
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{err: context.DeadlineExceeded},
	}

	loop, history := newTestLoop(deps, btc)
	err := loop.sweep(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "plan generation failed")
	require.Zero(t, history.Len())
}

func TestSweepExecutesTradablePlan(t *testing.T) {
	executor := &stubExecutor{}
	notifier := &stubNotifier{}
	journal := &stubJournal{}
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{plan: tradablePlanFor},
		Executor: executor,
		Notifier: notifier,
		Journal:  journal,
	}

	loop, history := newTestLoop(deps, btc)
	require.NoError(t, loop.sweep(context.Background()))

	require.Equal(t, 1, history.Len())
	require.Len(t, journal.saved, 1)
	require.Equal(t, []string{"BTC_USDT"}, executor.executed)
	require.Len(t, notifier.alerts, 1)
	require.Contains(t, notifier.alerts[0], "SIGNAL BTC_USDT")
	require.Contains(t, notifier.alerts[0], "Action: LONG")
}

func TestSweepAlertFailureDoesNotBlockExecution(t *testing.T) {
	executor := &stubExecutor{}
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{plan: tradablePlanFor},
		Executor: executor,
		Notifier: &stubNotifier{err: context.DeadlineExceeded},
	}

	loop, _ := newTestLoop(deps, btc)
	require.NoError(t, loop.sweep(context.Background()))
	require.Equal(t, []string{"BTC_USDT"}, executor.executed)
}

func TestSweepExecutorFailureIsContained(t *testing.T) {
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{plan: tradablePlanFor},
		Executor: &stubExecutor{err: context.DeadlineExceeded},
	}

	loop, history := newTestLoop(deps, btc, eth)
	require.NoError(t, loop.sweep(context.Background()))
	require.Equal(t, 2, history.Len(), "executor failure must not stop the sweep")
}

func TestSweepRecoversPanic(t *testing.T) {
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{onCall: func() { panic("indicator blew up") }},
	}

	loop, _ := newTestLoop(deps, btc)
	err := loop.sweep(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "sweep panic")
	require.Contains(t, err.Error(), "indicator blew up")
}

func TestSweepDiscardsPlanWhenCancelledMidDecision(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	executor := &stubExecutor{}
	journal := &stubJournal{}
	deps := &Deps{
		Provider: &stubProvider{},
		Pipeline: &stubPipeline{plan: tradablePlanFor, onCall: cancel},
		Executor: executor,
		Journal:  journal,
	}

	loop, history := newTestLoop(deps, btc)
	err := loop.sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, history.Len())
	require.Empty(t, journal.saved)
	require.Empty(t, executor.executed)
}

func TestRunStopsDuringPause(t *testing.T) {
	deps := &Deps{Provider: &stubProvider{}, Pipeline: &stubPipeline{}}
	loop, history := newTestLoop(deps, btc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return history.Len() >= 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	require.Equal(t, PhaseStopped, loop.Phase())
	require.Empty(t, loop.CurrentPair())
}
