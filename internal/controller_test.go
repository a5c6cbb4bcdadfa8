package internal

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caisyy0514/sentinel/config"
	"github.com/caisyy0514/sentinel/internal/metrics"
	"github.com/caisyy0514/sentinel/pkg/logring"
)

func stubBuilder(deps *Deps, err error) DepsBuilder {
	return func(config.Config, *zap.Logger) (*Deps, error) {
		if err != nil {
			return nil, err
		}
		return deps, nil
	}
}

func newTestController(t *testing.T, build DepsBuilder) *Controller {
	t.Helper()
	c := NewController(build, logring.New(50), metrics.NewRegistry(), zap.NewNop())
	c.stopWait = 200 * time.Millisecond
	return c
}

func workingDeps() *Deps {
	return &Deps{Provider: &stubProvider{}, Pipeline: &stubPipeline{}}
}

func TestControllerStartStopCycle(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))

	res := c.Start(testLoopConfig(btc))
	require.Equal(t, StartOK, res.Outcome)
	require.True(t, c.Status().Running)

	require.Eventually(t, func() bool {
		return len(c.Status().RecentPlans) >= 1
	}, time.Second, time.Millisecond)

	stop := c.Stop()
	require.Equal(t, StopOK, stop.Outcome)
	require.False(t, c.Status().Running)
}

func TestControllerStartWhileRunning(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))

	require.Equal(t, StartOK, c.Start(testLoopConfig(btc)).Outcome)
	defer c.Stop()

	res := c.Start(testLoopConfig(btc))
	require.Equal(t, StartAlreadyRunning, res.Outcome)
}

func TestControllerStopWhileStopped(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))
	require.Equal(t, StopNotRunning, c.Stop().Outcome)
}

func TestControllerStartRejectsInvalidConfig(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))

	cfg := testLoopConfig(btc)
	cfg.Platform = "kraken"

	res := c.Start(cfg)
	require.Equal(t, StartFailed, res.Outcome)
	require.Contains(t, res.Detail, "platform")
	require.False(t, c.Status().Running)
}

func TestControllerStartBuilderFailure(t *testing.T) {
	c := newTestController(t, stubBuilder(nil, errors.New("no api keys")))

	res := c.Start(testLoopConfig(btc))
	require.Equal(t, StartFailed, res.Outcome)
	require.Equal(t, "no api keys", res.Detail)
	require.False(t, c.Status().Running)
}

func TestControllerStatusKeepsLastRunAfterStop(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))

	require.Equal(t, StartOK, c.Start(testLoopConfig(btc)).Outcome)
	require.Eventually(t, func() bool {
		return len(c.Status().RecentPlans) >= 1
	}, time.Second, time.Millisecond)
	c.Stop()

	st := c.Status()
	require.False(t, st.Running)
	require.NotEmpty(t, st.RecentPlans, "last run's plans survive the stop")
	require.Equal(t, PhaseStopped, st.Phase)
}

func TestControllerStatusDefaults(t *testing.T) {
	c := newTestController(t, stubBuilder(workingDeps(), nil))

	st := c.Status()
	require.False(t, st.Running)
	require.Equal(t, PhaseIdle, st.Phase)
	require.Empty(t, st.CurrentSymbol)
	require.NotNil(t, st.RecentLogs)
	require.NotNil(t, st.RecentPlans)
}
