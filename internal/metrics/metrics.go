// Package metrics exposes Prometheus instrumentation for the sweep loop
// and the exchange clients.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors behind a dedicated Prometheus registry
// so multiple instances can coexist in tests.
type Registry struct {
	reg *prometheus.Registry

	SweepsTotal       prometheus.Counter
	PlansTotal        *prometheus.CounterVec
	FetchFailures     prometheus.Counter
	ExecutionFailures prometheus.Counter
	AlertFailures     prometheus.Counter
	CycleCrashes      prometheus.Counter
	FetchDuration     prometheus.Histogram
	LoopRunning       prometheus.Gauge
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_sweeps_total",
			Help: "Completed sweep cycles.",
		}),
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_plans_total",
			Help: "Tactical plans produced, by action and execute verdict.",
		}, []string{"action", "traded"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_fetch_failures_total",
			Help: "Market snapshot fetches that failed and were skipped.",
		}),
		ExecutionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_execution_failures_total",
			Help: "Order placements that failed.",
		}),
		AlertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_alert_failures_total",
			Help: "Signal alerts that could not be delivered.",
		}),
		CycleCrashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_cycle_crashes_total",
			Help: "Sweep cycles aborted by an unexpected error.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_fetch_duration_seconds",
			Help:    "Market snapshot fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
		LoopRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_loop_running",
			Help: "1 while the sweep loop is active.",
		}),
	}

	m.reg.MustRegister(
		m.SweepsTotal,
		m.PlansTotal,
		m.FetchFailures,
		m.ExecutionFailures,
		m.AlertFailures,
		m.CycleCrashes,
		m.FetchDuration,
		m.LoopRunning,
	)
	return m
}

// ObservePlan records a produced plan.
func (m *Registry) ObservePlan(action string, traded bool) {
	m.PlansTotal.WithLabelValues(action, strconv.FormatBool(traded)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
