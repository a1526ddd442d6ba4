package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/transship/core/metrics"
)

// PromSink records solver progress in Prometheus metrics.
type PromSink struct {
	periods        *prometheus.CounterVec
	periodDuration *prometheus.HistogramVec
	minValue       *prometheus.GaugeVec
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	states         prometheus.Gauge
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"mode", "policy"}
	s := &PromSink{
		periods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solver_periods_total",
			Help: "Backward-induction periods completed",
		}, labels),
		periodDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solver_period_duration_seconds",
			Help:    "Time spent evaluating every state of one period",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, labels),
		minValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "solver_value_min",
			Help: "Lowest state value of the last completed period",
		}, labels),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solver_runs_total",
			Help: "Solver runs by outcome",
		}, []string{"mode", "policy", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solver_run_duration_seconds",
			Help:    "Wall time of a solver run",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, labels),
		states: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solver_states",
			Help: "Number of states in the last run",
		}),
	}

	var err error
	if s.periods, err = register(reg, s.periods); err != nil {
		return nil, err
	}
	if s.periodDuration, err = register(reg, s.periodDuration); err != nil {
		return nil, err
	}
	if s.minValue, err = register(reg, s.minValue); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, s.runDuration); err != nil {
		return nil, err
	}
	if s.states, err = register(reg, s.states); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPeriod counts the period and observes its duration.
func (s *PromSink) RecordPeriod(ev coremetrics.PeriodEvent) error {
	s.periods.WithLabelValues(ev.Mode, ev.Policy).Inc()
	s.periodDuration.WithLabelValues(ev.Mode, ev.Policy).Observe(ev.Duration.Seconds())
	s.minValue.WithLabelValues(ev.Mode, ev.Policy).Set(ev.MinValue)
	return nil
}

// RecordRun counts the run by outcome and observes its duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Mode, ev.Policy, ev.Status()).Inc()
	s.runDuration.WithLabelValues(ev.Mode, ev.Policy).Observe(ev.Duration.Seconds())
	s.states.Set(float64(ev.States))
	return nil
}
