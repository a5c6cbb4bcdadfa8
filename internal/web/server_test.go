package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal"
	"github.com/caisyy0514/sentinel/internal/domain"
)

type stubEngine struct {
	started  []config.Config
	startRes internal.StartResult
	stopRes  internal.StopResult
	status   internal.Status
}

func (s *stubEngine) Start(cfg config.Config) internal.StartResult {
	s.started = append(s.started, cfg)
	return s.startRes
}

func (s *stubEngine) Stop() internal.StopResult { return s.stopRes }

func (s *stubEngine) Status() internal.Status { return s.status }

type stubPlans struct {
	records []domain.PlanRecord
	err     error
}

func (s *stubPlans) EventsAfter(index uint64) ([]domain.PlanRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.PlanRecord, 0)
	for _, r := range s.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(engine *stubEngine, plans *stubPlans) *Server {
	return NewServer(config.Default(), engine, plans, http.NotFoundHandler(), zap.NewNop())
}

func TestStatusEndpoint(t *testing.T) {
	engine := &stubEngine{status: internal.Status{
		Running:       true,
		Phase:         internal.PhaseSleeping,
		CurrentSymbol: "BTC_USDT",
		RecentLogs:    []string{"line one"},
		RecentPlans:   []domain.TacticalPlan{},
	}}
	srv := newTestServer(engine, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got internal.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Running)
	require.Equal(t, internal.PhaseSleeping, got.Phase)
	require.Equal(t, "BTC_USDT", got.CurrentSymbol)
	require.Equal(t, []string{"line one"}, got.RecentLogs)
}

func TestStartEndpointAppliesOverrides(t *testing.T) {
	engine := &stubEngine{startRes: internal.StartResult{Outcome: internal.StartOK}}
	srv := newTestServer(engine, &stubPlans{})

	body := strings.NewReader(`{"min_ev": 2.5, "pairs": ["SOL_USDT"]}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/start", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, engine.started, 1)
	require.Equal(t, 2.5, engine.started[0].MinEV)
	require.Equal(t, []domain.Pair{{From: "SOL", To: "USDT"}}, engine.started[0].Pairs)

	var res internal.StartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, internal.StartOK, res.Outcome)
}

func TestStartEndpointEmptyBodyUsesBaseConfig(t *testing.T) {
	engine := &stubEngine{startRes: internal.StartResult{Outcome: internal.StartOK}}
	srv := newTestServer(engine, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, engine.started, 1)
	require.Equal(t, config.Default().Platform, engine.started[0].Platform)
}

func TestStartEndpointRejectsInvalidOverrides(t *testing.T) {
	engine := &stubEngine{}
	srv := newTestServer(engine, &stubPlans{})

	body := strings.NewReader(`{"platform": "kraken"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/start", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, engine.started, "an invalid config must never reach the engine")
	require.Contains(t, rec.Body.String(), "platform")
}

func TestStartEndpointMapsInitFailure(t *testing.T) {
	engine := &stubEngine{startRes: internal.StartResult{
		Outcome: internal.StartFailed,
		Detail:  "no api keys",
	}}
	srv := newTestServer(engine, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/start", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "no api keys")
}

func TestStopEndpoint(t *testing.T) {
	engine := &stubEngine{stopRes: internal.StopResult{Outcome: internal.StopOK}}
	srv := newTestServer(engine, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "stopped")
}

func TestControlRoutesRejectWrongMethod(t *testing.T) {
	srv := newTestServer(&stubEngine{}, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/start", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexServesDashboard(t *testing.T) {
	srv := newTestServer(&stubEngine{}, &stubPlans{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "sentinel dashboard")
}

func streamPlan(symbol string, ev float64) domain.TacticalPlan {
	return domain.TacticalPlan{
		Timestamp:     time.Now().UTC(),
		Symbol:        symbol,
		Action:        domain.ActionLong,
		ShouldTrade:   true,
		ExpectedValue: ev,
	}
}

func TestPlanStreamSendsBacklog(t *testing.T) {
	plans := &stubPlans{records: []domain.PlanRecord{
		{Index: 1, Plan: streamPlan("BTC_USDT", 1.8)},
		{Index: 2, Plan: streamPlan("ETH_USDT", 2.1)},
	}}
	srv := newTestServer(&stubEngine{}, plans)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // backlog is written before the poll loop, then the handler exits

	req := httptest.NewRequest(http.MethodGet, "/plans/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Contains(t, body, "id: 1\n")
	require.Contains(t, body, "id: 2\n")
	require.Contains(t, body, "event: plan\n")
	require.Contains(t, body, "BTC_USDT")
	require.Contains(t, body, "ETH_USDT")
}

func TestPlanStreamResumesFromLastEventID(t *testing.T) {
	plans := &stubPlans{records: []domain.PlanRecord{
		{Index: 1, Plan: streamPlan("BTC_USDT", 1.8)},
		{Index: 2, Plan: streamPlan("ETH_USDT", 2.1)},
	}}
	srv := newTestServer(&stubEngine{}, plans)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/plans/stream", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", "1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.NotContains(t, body, "BTC_USDT")
	require.Contains(t, body, "ETH_USDT")
}

func TestParseLastEventID(t *testing.T) {
	require.EqualValues(t, 7, parseLastEventID("7", ""))
	require.EqualValues(t, 9, parseLastEventID("", "9"))
	require.EqualValues(t, 7, parseLastEventID("7", "9"), "header wins over query")
	require.Zero(t, parseLastEventID("", ""))
	require.Zero(t, parseLastEventID("junk", ""))
}
