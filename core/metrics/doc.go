// Package metrics defines the events emitted while a solver run progresses
// and the sinks that record them. PeriodEvent is emitted after each
// backward-induction period, RunEvent once per run. Sinks like the
// Prometheus and InfluxDB implementations in infra/metrics are built by name
// from configuration; NewMetricsSink returns a MultiSink automatically when
// several sinks are configured.
package metrics
