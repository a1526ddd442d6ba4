package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/transship/core/factory"
	coremetrics "github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/infra/journal"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(coremetrics.Env, map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(coremetrics.Env, map[string]any) (coremetrics.MetricsSink, error) {
		// The /metrics endpoint is served by StartPromServer.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(env coremetrics.Env, conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c, env.Log), nil
	})

	_ = coremetrics.RegisterMetricsSink("journal", func(_ coremetrics.Env, conf map[string]any) (coremetrics.MetricsSink, error) {
		var c journal.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		store, err := journal.Open(c)
		if err != nil {
			return nil, err
		}
		return journal.NewSink(store), nil
	})
}
